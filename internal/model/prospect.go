package model

// CompanyProfile is the minimal prospect context needed for outreach.
type CompanyProfile struct {
	CompanyName  string   `json:"company_name"`
	Industry     string   `json:"industry,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	WhatTheyDo   string   `json:"what_they_do"`
	TargetMarket string   `json:"target_market,omitempty"`
	Sources      []Source `json:"sources,omitempty"`
}

// PainPoint is a challenge inferred from the prospect's own content.
type PainPoint struct {
	Description      string   `json:"description"`
	Category         string   `json:"category"` // operational|strategic|technical|market|growth
	Evidence         string   `json:"evidence,omitempty"`
	AffectedPersonas []string `json:"affected_personas,omitempty"`
	Confidence       string   `json:"confidence"` // high|medium|low
	Sources          []Source `json:"sources,omitempty"`
}

// BuyerPersona is a specific role at the prospect company the vendor should
// target: the account's buying committee, not the vendor's generic ICP.
type BuyerPersona struct {
	Title                  string   `json:"persona_title"`
	Department             string   `json:"department,omitempty"`
	WhyTheyCare            string   `json:"why_they_care,omitempty"`
	PainPoints             []string `json:"pain_points,omitempty"`
	Goals                  []string `json:"goals,omitempty"`
	SuggestedTalkingPoints []string `json:"suggested_talking_points,omitempty"`
	PriorityScore          int      `json:"priority_score"` // 1-10, 10 highest
	Sources                []Source `json:"sources,omitempty"`
}

// ProspectIntelligence is the merged prospect analysis carried into playbook
// generation.
type ProspectIntelligence struct {
	CompanyProfile CompanyProfile `json:"company_profile"`
	PainPoints     []PainPoint    `json:"pain_points"`
	BuyerPersonas  []BuyerPersona `json:"buyer_personas"`
}
