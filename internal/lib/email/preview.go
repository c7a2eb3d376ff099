package email

// PreviewData holds sample values for rendering every template locally.
var PreviewData = map[Template]map[string]string{
	TemplateModerationNotice: {
		"AuthorName": "Ada",
		"EntryID":    "k5Xb9qLw",
		"Message":    "Thanks for the great <b>talk</b>!",
	},
}
