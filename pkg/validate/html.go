package validate

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
)

// HTMLSelector fails when the HTML body has no element matching the CSS
// selector.
func HTMLSelector(resp *apiclient.Response, selector string) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return &ValidationError{
			Check:   "html_selector",
			Message: fmt.Sprintf("parse HTML body: %v", err),
		}
	}
	if doc.Find(selector).Length() > 0 {
		return nil
	}
	return &ValidationError{
		Check:    "html_selector",
		Expected: fmt.Sprintf("at least one element matching %q", selector),
		Actual:   "no match",
		Message:  fmt.Sprintf("no element matches selector %q", selector),
	}
}
