package models

// Requests for sheet HTTP endpoints. Defined in domain for consistency and reuse.

type SheetRequest struct {
	Group  string `query:"group" json:"group"`
	Format string `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

type RecordRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required"`
}

type HistoryRequest struct {
	AsOf  string `query:"as_of" json:"as_of"`
	Limit int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}
