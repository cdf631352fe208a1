package compose

import (
	"strings"

	"github.com/tokenforge/sage/internal/model"
)

// documentTerms maps query vocabulary to canonical document type names.
var documentTerms = []struct {
	term    string
	docType string
}{
	{"passport", "passport"},
	{"id card", "id_card"},
	{"driver's license", "drivers_license"},
	{"drivers license", "drivers_license"},
	{"selfie", "selfie"},
	{"proof of address", "proof_of_address"},
}

// defaultKYCDocs is offered when a KYC query names no specific document.
var defaultKYCDocs = []string{"passport", "id_card"}

// deriveAction attaches the follow-up action matching the category and
// query. KYC answers carry an upload prompt naming the document types the
// user mentioned; status questions route to the review page; marketplace
// answers surface the matched items.
func deriveAction(query string, cat model.Category, entries []model.KnowledgeEntry) model.Action {
	q := strings.ToLower(query)

	switch cat {
	case model.CategoryKYC:
		if strings.Contains(q, "status") || strings.Contains(q, "how long") ||
			strings.Contains(q, "pending") || strings.Contains(q, "approved") {
			return model.ReviewStatusAction()
		}
		var docs []string
		for _, dt := range documentTerms {
			if strings.Contains(q, dt.term) {
				docs = append(docs, dt.docType)
			}
		}
		if len(docs) == 0 {
			docs = defaultKYCDocs
		}
		return model.UploadDocumentAction(docs...)

	case model.CategoryMarketplace:
		for _, e := range entries {
			if e.Category == model.KnowledgeMarketplace && e.Subtopic != "" {
				return model.ViewCategoryAction(e.Subtopic)
			}
		}
		if len(entries) > 0 {
			items := make([]string, 0, len(entries))
			for _, e := range entries {
				items = append(items, e.Topic)
			}
			return model.ShowItemsAction(items...)
		}
	}

	return model.NoAction()
}
