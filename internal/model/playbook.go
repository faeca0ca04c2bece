package model

// EmailTouch is a single email in a sequence, shaped for direct import into
// an email sequencer (subject + body + CTA fields).
type EmailTouch struct {
	TouchNumber          int      `json:"touch_number"` // 1-4
	Day                  int      `json:"day"`          // 1, 3, 7, 14
	Subject              string   `json:"subject"`
	Body                 string   `json:"body"`
	CallToAction         string   `json:"call_to_action"`
	PersonalizationNotes []string `json:"personalization_notes,omitempty"`
}

// EmailSequence is a multi-touch sequence targeting one buyer persona.
type EmailSequence struct {
	PersonaTitle  string       `json:"persona_title"`
	SequenceName  string       `json:"sequence_name"`
	Objective     string       `json:"objective,omitempty"`
	TotalDays     int          `json:"total_days"`
	Touches       []EmailTouch `json:"touches"`
	BestPractices []string     `json:"best_practices,omitempty"`
}

// DiscoveryQuestion is one question to ask on a discovery call.
type DiscoveryQuestion struct {
	Question  string   `json:"question"`
	Purpose   string   `json:"purpose,omitempty"`
	FollowUps []string `json:"follow_up_questions,omitempty"`
}

// CallScript is the script for one call type against one persona.
type CallScript struct {
	ScriptType         string              `json:"script_type"` // cold_call|discovery|demo|follow_up
	PersonaTitle       string              `json:"persona_title"`
	Opening            string              `json:"opening"`
	ValueProposition   string              `json:"value_proposition"`
	DiscoveryQuestions []DiscoveryQuestion `json:"discovery_questions,omitempty"`
	ObjectionResponses map[string]string   `json:"objection_responses,omitempty"`
	Closing            string              `json:"closing,omitempty"`
	NextSteps          []string            `json:"next_steps,omitempty"`
}

// TalkTrack bundles everything a rep needs to speak with one persona.
type TalkTrack struct {
	PersonaTitle      string            `json:"persona_title"`
	ElevatorPitch     string            `json:"elevator_pitch"`
	ColdCallScript    CallScript        `json:"cold_call_script"`
	DiscoveryScript   CallScript        `json:"discovery_script"`
	DemoTalkingPoints []string          `json:"demo_talking_points,omitempty"`
	ValueMapping      map[string]string `json:"value_mapping,omitempty"`
}

// ObjectionResponse is one handled objection on a battle card.
type ObjectionResponse struct {
	Objection         string   `json:"objection"`
	Category          string   `json:"category"` // price|timing|authority|need|competitor
	ResponseFramework string   `json:"response_framework,omitempty"`
	TalkTrack         string   `json:"talk_track"`
	ProofPoints       []string `json:"proof_points,omitempty"`
}

// CompetitivePositioning describes how to engage against one alternative.
type CompetitivePositioning struct {
	CompetitorName   string   `json:"competitor_name,omitempty"`
	WhenToEngage     []string `json:"when_to_engage,omitempty"`
	WhenNotToEngage  []string `json:"when_not_to_engage,omitempty"`
	OurAdvantages    []string `json:"our_advantages,omitempty"`
	TheirAdvantages  []string `json:"their_advantages,omitempty"`
	TrapQuestions    []string `json:"trap_setting_questions,omitempty"`
	LandminesToLay   []string `json:"landmines_to_lay,omitempty"`
}

// BattleCard is a sales-enablement card: why-we-win, objection handling, or
// competitive positioning.
type BattleCard struct {
	Title                  string                   `json:"title"`
	CardType               string                   `json:"card_type"` // why_we_win|objection_handling|competitive_positioning
	PersonaFocus           string                   `json:"persona_focus,omitempty"`
	KeyDifferentiators     []string                 `json:"key_differentiators,omitempty"`
	ProofPoints            []string                 `json:"proof_points,omitempty"`
	ObjectionResponses     []ObjectionResponse      `json:"objection_responses,omitempty"`
	CompetitivePositioning []CompetitivePositioning `json:"competitive_positioning,omitempty"`
}

// PlaybookSummary is the strategic layer produced before the component
// writers run: executive summary plus priority persona ordering.
type PlaybookSummary struct {
	ExecutiveSummary string            `json:"executive_summary"`
	PriorityPersonas []string          `json:"priority_personas"`
	QuickWins        []string          `json:"quick_wins,omitempty"`
	SuccessMetrics   map[string]string `json:"success_metrics,omitempty"`
}

// Playbook is the assembled deliverable for one vendor→prospect engagement.
type Playbook struct {
	VendorName    string `json:"vendor_name"`
	ProspectName  string `json:"prospect_name"`
	GeneratedDate string `json:"generated_date"` // ISO date

	ExecutiveSummary string            `json:"executive_summary"`
	PriorityPersonas []string          `json:"priority_personas"`
	QuickWins        []string          `json:"quick_wins,omitempty"`
	SuccessMetrics   map[string]string `json:"success_metrics,omitempty"`

	EmailSequences []EmailSequence `json:"email_sequences"`
	TalkTracks     []TalkTrack     `json:"talk_tracks"`
	BattleCards    []BattleCard    `json:"battle_cards"`

	VendorIntelligence   VendorIntelligence   `json:"vendor_intelligence"`
	ProspectIntelligence ProspectIntelligence `json:"prospect_intelligence"`

	// Warnings lists sub-extractions that failed; the playbook is still a
	// valid best-effort artifact when this is non-empty.
	Warnings []string `json:"warnings,omitempty"`
}
