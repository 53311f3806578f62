package glossary

import "github.com/glossary/api/internal/model"

// SampleRecords is served when no glossary file exists yet.
func SampleRecords() []model.Record {
	return []model.Record{
		{Letter: "0", Term: "404 page", Definition: "The page shown when a requested URL does not exist."},
		{Letter: "A", Term: "Accessibility", Definition: "Designing products that people with disabilities can use.", Acronym: "a11y"},
		{Letter: "A", Term: "API", Definition: "A defined interface that lets programs talk to each other.", Acronym: "API"},
		{Letter: "C", Term: "Call to action", Definition: "A prompt that tells the user what to do next.", Acronym: "CTA"},
		{Letter: "U", Term: "User experience", Definition: "How a person feels when interacting with a product.", Acronym: "UX", SeeAlso: "User interface"},
		{Letter: "U", Term: "User interface", Definition: "The screens, controls and visuals a user interacts with.", Acronym: "UI", SeeAlso: "User experience"},
		{Letter: "W", Term: "Wireframe", Definition: "A low-fidelity layout sketch of a page or screen."},
	}
}
