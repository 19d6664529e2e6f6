// Package model defines the data types shared across the posting pipeline:
// jobs read from the input file, publish settings, and per-job outcomes.
package model

import "strings"

// Content holds the structured fields of one blog post. The JSON keys follow
// the fixed input schema and must not change. Only Title is required; every
// other field is optional and rendered in a fixed section order.
type Content struct {
	Title         string `json:"blog_title"`
	TitleImage    string `json:"blog_title_img"`
	Intro         string `json:"blog_top_word"`
	Intro2        string `json:"blog_top_word2"`
	TitleImage2   string `json:"blog_title_img2"`
	Body          string `json:"blog_basic"`
	Feature       string `json:"blog_feature"`
	TitleImage3   string `json:"blog_title_img3"`
	SectionTitle1 string `json:"site_title1"`
	SectionBody1  string `json:"site_cont1"`
	SectionImage1 string `json:"site_img1"`
	Quote         string `json:"site_quote"`
	SectionTitle2 string `json:"site_title2"`
	SectionBody2  string `json:"site_cont2"`
	SectionImage2 string `json:"site_img2"`
	Address       string `json:"site_addr"`
	Address2      string `json:"site_addr2"`
	ContactImage  string `json:"site_cll_img"`
	Hours         string `json:"site_time"`
	Business      string `json:"site_bus"`
	TagList       string `json:"site_tag"`
}

// Tags parses the comma-separated tag list into a normalized slice:
// whitespace trimmed, empty entries dropped, original order preserved.
func (c Content) Tags() []string {
	if c.TagList == "" {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(c.TagList, ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ImageURLs returns every non-empty image URL in section order.
func (c Content) ImageURLs() []string {
	var urls []string
	for _, u := range []string{
		c.TitleImage, c.TitleImage2, c.TitleImage3,
		c.SectionImage1, c.SectionImage2, c.ContactImage,
	} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Job is one unit of work: an account plus the content to publish for it.
// Jobs are constructed once from validated input and never mutated; Index is
// the position in the original input array and is used only for reporting.
type Job struct {
	AccountID string  `json:"sns_id"`
	Secret    string  `json:"sns_pw"`
	Content   Content `json:"sns_upload_cont"`
	Index     int     `json:"-"`
}

// BlogID derives the blog identifier from the account: the local part of an
// email-style account id, or the id itself when it carries no domain.
func (j Job) BlogID() string {
	if at := strings.IndexByte(j.AccountID, '@'); at >= 0 {
		return j.AccountID[:at]
	}
	return j.AccountID
}
