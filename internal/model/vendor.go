package model

// Source links an extracted record back to the scraped page it came from.
type Source struct {
	URL      string `json:"url"`
	PageType string `json:"page_type,omitempty"`
}

// Offering is a product or service the vendor sells.
type Offering struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Features          []string `json:"features,omitempty"`
	PricingIndicators string   `json:"pricing_indicators,omitempty"`
	TargetAudience    string   `json:"target_audience,omitempty"`
	Sources           []Source `json:"sources,omitempty"`
}

// CaseStudy is a customer success story published by the vendor.
type CaseStudy struct {
	CustomerName string   `json:"customer_name"`
	Industry     string   `json:"industry,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	Challenge    string   `json:"challenge"`
	Solution     string   `json:"solution"`
	Results      []string `json:"results,omitempty"`
	Metrics      []string `json:"metrics,omitempty"`
	Sources      []Source `json:"sources,omitempty"`
}

// ProofPoint is a testimonial, statistic, award, or certification.
type ProofPoint struct {
	Type              string   `json:"type"` // testimonial|statistic|award|certification
	Content           string   `json:"content"`
	SourceAttribution string   `json:"source_attribution,omitempty"`
	Sources           []Source `json:"sources,omitempty"`
}

// ValueProposition is a core value statement and its supporting benefits.
type ValueProposition struct {
	Statement       string   `json:"statement"`
	Benefits        []string `json:"benefits,omitempty"`
	Differentiation string   `json:"differentiation,omitempty"`
	TargetPersona   string   `json:"target_persona,omitempty"`
	Sources         []Source `json:"sources,omitempty"`
}

// ReferenceCustomer is a named customer, partner, or integration.
type ReferenceCustomer struct {
	Name         string   `json:"name"`
	Industry     string   `json:"industry,omitempty"`
	CompanySize  string   `json:"company_size,omitempty"`
	Relationship string   `json:"relationship"` // customer|partner|integration
	Sources      []Source `json:"sources,omitempty"`
}

// UseCase is a workflow or problem the vendor's product addresses.
type UseCase struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	TargetPersona   string   `json:"target_persona,omitempty"`
	TargetIndustry  string   `json:"target_industry,omitempty"`
	ProblemsSolved  []string `json:"problems_solved,omitempty"`
	KeyFeaturesUsed []string `json:"key_features_used,omitempty"`
	Sources         []Source `json:"sources,omitempty"`
}

// ICPPersona is a buyer archetype the vendor typically sells to. This is the
// vendor's ideal customer profile, not a role at any particular prospect.
type ICPPersona struct {
	Title            string   `json:"title"`
	Department       string   `json:"department,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	PainPoints       []string `json:"pain_points,omitempty"`
	Sources          []Source `json:"sources,omitempty"`
}

// Differentiator is a competitive claim the vendor makes.
type Differentiator struct {
	Category      string   `json:"category"` // feature|approach|market_position|technology
	Statement     string   `json:"statement"`
	VsAlternative string   `json:"vs_alternative,omitempty"`
	Evidence      []string `json:"evidence,omitempty"`
	Sources       []Source `json:"sources,omitempty"`
}

// VendorIntelligence is the merged vendor GTM element library carried into
// persona identification and playbook generation.
type VendorIntelligence struct {
	Offerings          []Offering          `json:"offerings"`
	CaseStudies        []CaseStudy         `json:"case_studies"`
	ProofPoints        []ProofPoint        `json:"proof_points"`
	ValuePropositions  []ValueProposition  `json:"value_propositions"`
	ReferenceCustomers []ReferenceCustomer `json:"reference_customers"`
	UseCases           []UseCase           `json:"use_cases"`
	ICPPersonas        []ICPPersona        `json:"icp_personas"`
	Differentiators    []Differentiator    `json:"differentiators"`
}

// VendorName returns the best available vendor display name: the first
// offering's name, or the fallback.
func (v VendorIntelligence) VendorName(fallback string) string {
	if len(v.Offerings) > 0 && v.Offerings[0].Name != "" {
		return v.Offerings[0].Name
	}
	return fallback
}

// ElementCount tallies every extracted vendor element, for run metadata.
func (v VendorIntelligence) ElementCount() int {
	return len(v.Offerings) + len(v.CaseStudies) + len(v.ProofPoints) +
		len(v.ValuePropositions) + len(v.ReferenceCustomers) + len(v.UseCases) +
		len(v.ICPPersonas) + len(v.Differentiators)
}
