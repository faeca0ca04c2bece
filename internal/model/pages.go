package model

// Side identifies which company a page or record belongs to.
type Side string

const (
	SideVendor   Side = "vendor"
	SideProspect Side = "prospect"
)

// SiteMap is the URL inventory discovered for one domain.
type SiteMap struct {
	Domain    string   `json:"domain"`
	URLs      []string `json:"urls"`
	TotalURLs int      `json:"total_urls"`
}

// HomepageContent is a scraped homepage.
type HomepageContent struct {
	Domain   string `json:"domain"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	Title    string `json:"title,omitempty"`
}

// HomepageAnalysis is the LLM's read of a homepage, used as context when
// prioritizing which deeper pages to scrape.
type HomepageAnalysis struct {
	CompanyName     string   `json:"company_name"`
	WhatTheyDo      string   `json:"what_they_do"`
	TargetAudiences []string `json:"target_audiences,omitempty"`
	KeyProducts     []string `json:"key_products,omitempty"`
	PageHints       []string `json:"page_hints,omitempty"`
}

// SelectedURL is one prioritized URL with its predicted page type.
type SelectedURL struct {
	URL      string `json:"url"`
	PageType string `json:"page_type,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// URLSelection is the prioritizer's output for both sides.
type URLSelection struct {
	Vendor   []SelectedURL `json:"vendor_selected_urls"`
	Prospect []SelectedURL `json:"prospect_selected_urls"`
}

// URLs flattens one side's selection to plain URLs.
func URLs(sel []SelectedURL) []string {
	out := make([]string, 0, len(sel))
	for _, s := range sel {
		out = append(out, s.URL)
	}
	return out
}

// PageText is scraped markdown for one URL, tagged with its predicted type.
type PageText struct {
	URL      string `json:"url"`
	PageType string `json:"page_type,omitempty"`
	Markdown string `json:"markdown"`
}

// ScrapedContent is the batch-scrape output partitioned by side. Keys are
// URLs; the maps are disjoint by construction.
type ScrapedContent struct {
	Vendor   map[string]PageText `json:"vendor"`
	Prospect map[string]PageText `json:"prospect"`
}

// PagesFor returns the page set for one side.
func (s ScrapedContent) PagesFor(side Side) map[string]PageText {
	if side == SideVendor {
		return s.Vendor
	}
	return s.Prospect
}
