package consts

const (
	State_Unavailable = "Unavailable"
	State_NoData      = "No data"
	State_NA          = "N/A"
)
