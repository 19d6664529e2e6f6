package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/browser"
)

// verifyPublished confirms the post actually appears on the blog. A publish
// click that looked successful can still be swallowed by the dialog, so the
// post list is the source of truth: the frame text is searched first, then
// the rendered markup is scanned for a matching link, and finally the blog
// main page is checked.
func (a *Automaton) verifyPublished(title string) (string, error) {
	a.state = StateVerifyPublished
	a.sleep(3 * time.Second)

	listURL := fmt.Sprintf("%s/PostList.naver?blogId=%s&from=postList&categoryNo=0", blogBaseURL, a.blogID)
	if err := a.drv.Navigate(listURL); err != nil {
		return "", fmt.Errorf("%w: open post list: %v", ErrVerificationFailed, err)
	}
	a.sleep(navigationSettle)

	if obj, err := browser.EvalObject(a.drv, frameTextSearchScript(title)); err == nil && browser.ObjBool(obj, "found") {
		a.log.Info("post verified on post list")
		return browser.ObjString(obj, "href"), nil
	}

	if href, found := a.findPostLink(title); found {
		a.log.Info("post verified via link scan", zap.String("url", href))
		return href, nil
	}

	mainURL := fmt.Sprintf("%s/%s", blogBaseURL, a.blogID)
	if err := a.drv.Navigate(mainURL); err != nil {
		return "", fmt.Errorf("%w: open blog main: %v", ErrVerificationFailed, err)
	}
	a.sleep(navigationSettle)

	if markup, err := a.drv.Content(); err == nil && strings.Contains(markup, title) {
		a.log.Info("post verified on blog main")
		return "", nil
	}
	if obj, err := browser.EvalObject(a.drv, frameHTMLSearchScript(title)); err == nil && browser.ObjBool(obj, "found") {
		a.log.Info("post verified in frame markup")
		return "", nil
	}

	return "", fmt.Errorf("%w: %q", ErrVerificationFailed, title)
}

// findPostLink scans the rendered post-list markup for an anchor whose text
// contains the title and returns its href.
func (a *Automaton) findPostLink(title string) (string, bool) {
	markup, err := a.drv.Content()
	if err != nil {
		a.log.Debug("post list markup read failed", zap.Error(err))
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		a.log.Debug("post list markup parse failed", zap.Error(err))
		return "", false
	}

	var href string
	var found bool
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.TrimSpace(sel.Text()), title) {
			return true
		}
		found = true
		href, _ = sel.Attr("href")
		return false
	})
	return href, found
}
