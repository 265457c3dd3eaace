package analysis

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Response schemas for the three analysis kinds. Every model payload is
// validated against its schema before anything flows into persistence; an
// unchecked object never leaves this package.

const jobAnalysisSchema = `{
	"type": "object",
	"required": ["result", "confidence_score", "risk_rate", "risk_level", "explanations", "safety_tips"],
	"properties": {
		"result": {"type": "string", "enum": ["Fake Job", "Genuine Job"]},
		"confidence_score": {"type": "number"},
		"risk_rate": {"type": "number"},
		"risk_level": {"type": "string"},
		"explanations": {"type": "array", "items": {"type": "string"}},
		"safety_tips": {"type": "array", "items": {"type": "string"}}
	}
}`

const resumeAnalysisSchema = `{
	"type": "object",
	"required": ["match_percentage", "ats_score", "fraud_risk_score", "matched_skills", "missing_skills", "suggestions", "roadmap"],
	"properties": {
		"match_percentage": {"type": "number"},
		"ats_score": {"type": "number"},
		"fraud_risk_score": {"type": "number"},
		"strength_score": {"type": "number"},
		"rating": {"type": "string"},
		"summary": {"type": "string"},
		"matched_skills": {"type": "array", "items": {"type": "string"}},
		"missing_skills": {"type": "array", "items": {"type": "string"}},
		"suggestions": {"type": "array", "items": {"type": "string"}},
		"roadmap": {"type": "array", "items": {"type": "string"}}
	}
}`

const interviewPrepSchema = `{
	"type": "object",
	"required": ["technical_questions", "hr_questions", "roadmap", "resources"],
	"properties": {
		"technical_questions": {"type": "array", "items": {"type": "string"}},
		"hr_questions": {"type": "array", "items": {"type": "string"}},
		"roadmap": {"type": "array", "items": {"type": "string"}},
		"resources": {"type": "array", "items": {"type": "string"}}
	}
}`

// decodeStrict validates payload against schema, then unmarshals it into dst.
// Any structural failure is a MalformedResponseError.
func decodeStrict(schema, payload string, dst any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return &MalformedResponseError{Reason: "response is not valid JSON", Err: err}
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return &MalformedResponseError{Reason: "schema validation failed: " + strings.Join(reasons, "; ")}
	}

	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return &MalformedResponseError{Reason: "failed to decode response", Err: err}
	}
	return nil
}
