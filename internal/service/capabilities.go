package service

var categories = []string{
	"player_search",
	"comparison",
	"young_prospects",
	"top_performers",
	"custom_filter",
	"tactical_analysis",
}

var exampleQueries = []string{
	"Compare Haaland vs Mbappé",
	"Find young midfielders under 21",
	"Top scorers in Premier League",
	"Show me defenders under 25 with more than 3 goals",
	"Who can play alongside Kobbie Mainoo in Ligue 1?",
	"Find a replacement for Rodri in the Premier League",
	"Tell me about Pedri",
}

var positions = []string{"Goalkeeper", "Defender", "Midfielder", "Forward"}
