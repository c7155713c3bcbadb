package resume

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	shareMailSubject     = "Check out my resume"
	shareLinkedInTitle   = "Check out my updated resume!"
	linkedInShareBaseURL = "https://www.linkedin.com/sharing/share-offsite/"
)

// ShareLinks holds the generated sharing URLs for a resume. The links are not
// backed by any resolution service.
type ShareLinks struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	Mailto   string `json:"mailto"`
	LinkedIn string `json:"linkedin"`
}

// NewShareLinks builds the share links for id under origin.
func NewShareLinks(origin, id string) (ShareLinks, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return ShareLinks{}, NewError(KindValidation, "share origin is required", nil)
	}
	if id == "" {
		return ShareLinks{}, NewError(KindValidation, "share id is required", nil)
	}
	if _, err := url.ParseRequestURI(origin); err != nil {
		return ShareLinks{}, NewError(KindValidation, fmt.Sprintf("invalid share origin %q", origin), err)
	}

	link := origin + "/resume/" + url.PathEscape(id)
	body := fmt.Sprintf("Hi,\n\nI'd like to share my resume with you. You can view it here: %s\n\nBest regards", link)

	mailto := "mailto:?subject=" + url.QueryEscape(shareMailSubject) + "&body=" + url.QueryEscape(body)

	linkedIn := linkedInShareBaseURL + "?" + url.Values{
		"url":   {link},
		"title": {shareLinkedInTitle},
	}.Encode()

	return ShareLinks{ID: id, Link: link, Mailto: mailto, LinkedIn: linkedIn}, nil
}
