package pipeline

// Stage and group names. Downstream stages reference these in their
// dependency lists, and the CLI uses them when reporting progress.
const (
	GroupSiteMapping     = "site_mapping"
	GroupHomepageScrape  = "homepage_scraping"
	GroupHomepageAnalyze = "homepage_analysis"
	GroupVendorExtract   = "vendor_extraction"
	GroupProspectContext = "prospect_analysis"
	GroupComponents      = "playbook_components"

	StageMapVendor       = "map_vendor"
	StageMapProspect     = "map_prospect"
	StageScrapeVendor    = "scrape_vendor_home"
	StageScrapeProspect  = "scrape_prospect_home"
	StageAnalyzeVendor   = "analyze_vendor_home"
	StageAnalyzeProspect = "analyze_prospect_home"
	StagePrioritizeURLs  = "prioritize_urls"
	StageBatchScrape     = "batch_scrape"
	StageAnalyzeCompany  = "analyze_company"
	StagePainPoints      = "analyze_pain_points"
	StagePersonas        = "identify_buyer_personas"
	StageSummary         = "playbook_summary"
	StageEmailSequences  = "email_sequences"
	StageTalkTracks      = "talk_tracks"
	StageBattleCards     = "battle_cards"
	StageAssemble        = "assemble_playbook"
)
