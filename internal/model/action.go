package model

// ActionType tags the kind of follow-up action attached to an answer.
type ActionType string

const (
	ActionNone           ActionType = "none"
	ActionUploadDocument ActionType = "upload_document"
	ActionReviewStatus   ActionType = "review_status"
	ActionViewCategory   ActionType = "view_category"
	ActionShowItems      ActionType = "show_items"
)

// Action is the tagged union of follow-up actions an answer can carry.
// Only the fields matching Type are populated.
type Action struct {
	Type          ActionType `json:"type"`
	DocumentTypes []string   `json:"document_types,omitempty"` // upload_document
	Category      string     `json:"category,omitempty"`       // view_category
	Items         []string   `json:"items,omitempty"`          // show_items
}

// NoAction is the zero-value action attached to answers with no follow-up.
func NoAction() Action {
	return Action{Type: ActionNone}
}

// UploadDocumentAction prompts the user to upload the named document types.
func UploadDocumentAction(types ...string) Action {
	return Action{Type: ActionUploadDocument, DocumentTypes: types}
}

// ReviewStatusAction points the user at their verification status page.
func ReviewStatusAction() Action {
	return Action{Type: ActionReviewStatus}
}

// ViewCategoryAction points the user at a marketplace category.
func ViewCategoryAction(category string) Action {
	return Action{Type: ActionViewCategory, Category: category}
}

// ShowItemsAction lists concrete items alongside the answer.
func ShowItemsAction(items ...string) Action {
	return Action{Type: ActionShowItems, Items: items}
}
