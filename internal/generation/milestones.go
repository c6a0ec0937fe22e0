package generation

// Milestone is one cosmetic progress step shown while the backend works.
type Milestone struct {
	Label   string
	Percent int
}

// Milestones is the fixed pacing sequence. Percent strictly increases and is
// 100 only on the last entry.
var Milestones = []Milestone{
	{Label: "Collecting sources", Percent: 10},
	{Label: "Analyzing content", Percent: 30},
	{Label: "Generating script", Percent: 55},
	{Label: "Producing narration", Percent: 80},
	{Label: "Finalizing output", Percent: 100},
}
