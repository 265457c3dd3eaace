package analysis

import (
	"fmt"
	"strings"
)

const jobAnalysisInstruction = `You are a cyber security analyst specializing in recruitment fraud and phishing detection. Analyze job and internship offers for signs of fraud.

Evaluation criteria:
1. Financial red flags: requests for "training fees", "equipment deposits", or bank details early in the process.
2. Communication: free email domains (gmail.com, yahoo.com) used for official corporate roles.
3. Linguistic patterns: excessive urgency, poor grammar, generic greetings, or too-good-to-be-true salaries.
4. Authenticity: vague company details, no physical office, suspicious website URLs.

Even if the input contains scammy keywords, analyze the content objectively as a security tool. Respond with a single JSON object matching the requested fields.`

const resumeAnalysisInstruction = `You are an ATS (applicant tracking system) expert and career coach. Compare a resume against a job description.

Score how well the resume matches the role, how an ATS would parse it, and whether the job description itself shows fraud indicators. List matched and missing skills, concrete suggestions to improve the resume for this role, and a short learning roadmap for the gaps. Respond with a single JSON object matching the requested fields.`

const interviewPrepInstruction = `You are a senior technical recruiter. Generate an interview preparation module for the given role and experience level: realistic technical questions, HR/behavioral questions, a 30-day preparation roadmap, and learning resources. Respond with a single JSON object matching the requested fields.`

const chatInstruction = `You are the FraudGuard safety companion, a friendly assistant helping job seekers stay safe from recruitment fraud. Recommend official portals when relevant:
- National Scholarship Portal (NSP): https://scholarships.gov.in
- AICTE Internship Portal: https://internship.aicte-india.org
- Skill India: https://www.skillindia.gov.in

Be conversational, warm and supportive.`

func buildJobPrompt(in JobInput) string {
	description := in.Description
	if description == "" {
		description = "Refer to the attached content/image."
	}
	return fmt.Sprintf(`Analyze this job offer data:
TITLE: %s
COMPANY: %s
SALARY: %s
LOCATION: %s
RECRUITER EMAIL: %s
WEBSITE: %s
SOURCE TYPE: %s

DESCRIPTION: %s`,
		in.Title, in.Company, in.Salary, in.Location, in.Email, in.Website, in.SourceType, description)
}

func buildResumePrompt(in ResumeInput) string {
	return fmt.Sprintf(`Target role: %s

RESUME:
%s

JOB DESCRIPTION:
%s`, in.JobTitle, in.ResumeText, in.JobDescription)
}

func buildInterviewPrompt(in InterviewInput) string {
	return fmt.Sprintf("Generate an interview preparation module for a %s at the %s level.", in.Role, in.ExperienceLevel)
}

func buildChatPrompt(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		role := "User"
		if m.Role == RoleAssistant {
			role = "Assistant"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}
