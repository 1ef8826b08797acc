package pipeline

// ── Schemas ────────────────────────────────────────────────
// Source column names are fixed by the partner's export format
// (Portuguese headers). Output schemas are fixed by the two
// destinations and declared here so they stay independently testable.

// Source file column names, as they appear in the export's header row.
const (
	ColTripID           = "ID da viagem/Uber Eats"
	ColTransactionTS    = "Carimbo de data/hora da transação (UTC)"
	ColRequestDate      = "Data da solicitação (local)"
	ColRequestTime      = "Hora da solicitação (local)"
	ColArrivalDateUTC   = "Data de chegada (UTC)"
	ColArrivalTimeUTC   = "Hora de chegada (UTC)"
	ColArrivalDateLocal = "Data de chegada (local)"
	ColArrivalTimeLocal = "Hora de chegada (local)"
	ColFirstName        = "Nome"
	ColLastName         = "Sobrenome"
	ColGroup            = "Grupo"
	ColService          = "Serviço"
	ColCity             = "Cidade"
	ColCountry          = "País"
	ColDistance         = "Distância (mi)"
	ColDuration         = "Duração (min)"
	ColOrigin           = "Endereço de partida"
	ColDestination      = "Endereço de destino"
	ColOtherCharges     = "Outras taxas"
	ColTotal            = "Valor total"
)

// VerificationPending is the constant verification marker stamped on
// every row pushed to the spreadsheet, regardless of source content.
const VerificationPending = "PENDENTE"

// SheetColumns is the declared output column order for the spreadsheet
// push. The append sink sends each record as a row in exactly this order.
var SheetColumns = []string{
	"trip_id",
	"transaction_ts_utc",
	"arrival_date_utc",
	"arrival_time_utc",
	"arrival_date_local",
	"arrival_time_local",
	"first_name",
	"last_name",
	"group",
	"service",
	"city",
	"country",
	"distance_mi",
	"duration_min",
	"origin_address",
	"destination_address",
	"other_charges",
	"verification_status",
}

// sheetColumnSource maps sheet output columns to source columns.
// verification_status has no source; it is stamped by the projection.
var sheetColumnSource = map[string]string{
	"trip_id":             ColTripID,
	"transaction_ts_utc":  ColTransactionTS,
	"arrival_date_utc":    ColArrivalDateUTC,
	"arrival_time_utc":    ColArrivalTimeUTC,
	"arrival_date_local":  ColArrivalDateLocal,
	"arrival_time_local":  ColArrivalTimeLocal,
	"first_name":          ColFirstName,
	"last_name":           ColLastName,
	"group":               ColGroup,
	"service":             ColService,
	"city":                ColCity,
	"country":             ColCountry,
	"distance_mi":         ColDistance,
	"duration_min":        ColDuration,
	"origin_address":      ColOrigin,
	"destination_address": ColDestination,
	"other_charges":       ColOtherCharges,
}

// DocFields is the closed field set of a trip document. distance_mi,
// duration_min and total are stored as float64; everything else as string.
var DocFields = []string{
	"trip_id",
	"request_date",
	"request_time",
	"arrival_time",
	"full_name",
	"group",
	"service",
	"city",
	"country",
	"distance_mi",
	"duration_min",
	"origin_address",
	"destination_address",
	"total",
}
