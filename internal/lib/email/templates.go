package email

// Template names a file under templates/ without its extension.
type Template string

const (
	TemplateModerationNotice Template = "moderation_notice"
)

func (t Template) file() string {
	return string(t) + ".html"
}
