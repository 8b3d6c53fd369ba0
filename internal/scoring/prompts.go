package scoring

import (
	"fmt"
	"strings"
)

// CriteriaSystemPrompt primes the model for the criteria-extraction call.
const CriteriaSystemPrompt = "You are an expert HR specialist who scans job descriptions and resumes to extract information and score candidates."

// ScoringSystemPrompt primes the model for a resume-scoring call, pulling the
// job title into the recruiter persona when one was supplied.
func ScoringSystemPrompt(jobTitle string) string {
	role := "technical"
	if jobTitle != "" {
		role = jobTitle
	}
	return fmt.Sprintf("You are an expert technical recruiter specialized in evaluating candidates for %s roles.", role)
}

// BuildCriteriaPrompt renders the instruction that asks the model for 5-12
// ranked evaluation criteria from a job description. Additional free-text
// criteria, when given, are appended as a bulleted addendum the model should
// merge into or override the extracted set.
func BuildCriteriaPrompt(jobDescription string, additionalCriteria []string) string {
	additionalText := ""
	if len(additionalCriteria) > 0 {
		var bullets strings.Builder
		for _, criterion := range additionalCriteria {
			bullets.WriteString(fmt.Sprintf("- %s\n", criterion))
		}
		additionalText = fmt.Sprintf(`I have also included the following additional criteria that you should consider in your analysis.
You should integrate these with the criteria from the job description, and they may override or
complement the existing criteria:

%s`, bullets.String())
	}

	return fmt.Sprintf(`You are an expert HR recruiter tasked with extracting the key evaluation criteria from job descriptions.

Your task is to identify the MOST IMPORTANT ranking criteria that would be used to evaluate and score candidates. Focus on extracting 5-12 KEY criteria that truly differentiate candidates for this role.

IMPORTANT GUIDELINES:
1. Focus on the CORE requirements of the role - what skills/qualifications are truly essential
2. Keep different technologies separate (e.g., Python, SQL, AWS)
3. Group related soft skills appropriately (don't create too many separate criteria)
4. Include specific education/experience requirements as stated
5. Prioritize technical skills and domain knowledge over generic abilities
6. Avoid excessive granularity - too many criteria dilute the importance of each

DO NOT include:
- General job descriptions or responsibilities
- Workplace benefits or policies
- Physical work environment descriptions
- Employment terms/conditions
- Repetitive criteria that measure essentially the same skill

Format your response as a JSON object with a single key 'criteria' that contains an array of strings, where each string is a separate criterion. List them in order of importance to the role.

Examples of BAD criteria (too consolidated):
- "Experience with Python, SQL, AWS, Excel, and PowerPoint"
- "Strong communication and presentation skills"

%s

Here is the job description:

%s`, additionalText, jobDescription)
}

// BuildScoringPrompt renders the instruction that asks the model to score one
// resume against the criteria list on the 0-5 rubric.
func BuildScoringPrompt(resumeText string, criteria []string, jobTitle string) string {
	jobContext := "for this position"
	roleName := "the role"
	if jobTitle != "" {
		jobContext = fmt.Sprintf("for a %s position", jobTitle)
		roleName = jobTitle
	}

	var criteriaList strings.Builder
	for _, c := range criteria {
		criteriaList.WriteString(fmt.Sprintf("- %s\n", c))
	}

	return fmt.Sprintf(`You are a technical recruiter evaluating candidates %s. Analyze the provided resume against the following job criteria.

For each criterion, assign a score from 0 to 5 where:
- 0: No evidence of the criterion in the resume
- 1: Minimal/indirect evidence or very weak match
- 2: Some evidence but limited or tangential experience/qualification
- 3: Moderate evidence showing relevant experience/qualification
- 4: Strong evidence of meeting the criterion with substantial experience
- 5: Excellent match, exceeding the criterion requirements with extensive experience

CRITICAL SCORING GUIDELINES:
1. The most important criteria for this role are directly related to the core technical and domain requirements of %s
2. Candidates without direct experience in the primary domain of %s should receive substantially lower overall scores
3. Generic transferable skills (like "communication") should not compensate for a lack of core technical requirements
4. Secondary or "nice to have" skills should not significantly impact the total score compared to essential skills
5. Require EXPLICIT evidence in the resume - do not assume skills based on job titles alone
6. For technical skills, look for specific mentions and practical application

Format your response as a JSON object with the candidate name and an array of scores, where each score is an object with the criterion and score value.

Here are the criteria:
%s
Here is the resume text:
%s

Example Output:
{
  "candidate_name": "John Doe",
  "scores": [
    {
      "criterion": "Experience with Python programming",
      "score": 5,
      "justification": "The candidate has 5+ years of Python development with specific projects including ML model development and data pipelines."
    },
    {
      "criterion": "Experience with AWS cloud services",
      "score": 0,
      "justification": "No mention of AWS experience anywhere in the resume."
    }
  ]
}`, jobContext, roleName, roleName, criteriaList.String(), resumeText)
}
