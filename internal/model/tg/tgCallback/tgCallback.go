package tgCallback

// Callbacks buttons prefixes
const (
	RefreshAll string = "refresh_all"
	Share      string = "share"

	DeletePrefix  string = "delete:"
	RefreshPrefix string = "refresh:"
	PeriodPrefix  string = "period:"
)
