package core

// Balance is the directional reduction of a Transaction sequence.
// Net only counts completed flows; pending amounts are expected, not realized.
type Balance struct {
	CompletedIn  Money `json:"completedIn"`
	CompletedOut Money `json:"completedOut"`
	PendingIn    Money `json:"pendingIn"`
	PendingOut   Money `json:"pendingOut"`
	Net          Money `json:"netBalance"`
}

// Equal compares every total by numeric value.
func (b Balance) Equal(o Balance) bool {
	return b.CompletedIn.Equal(o.CompletedIn) &&
		b.CompletedOut.Equal(o.CompletedOut) &&
		b.PendingIn.Equal(o.PendingIn) &&
		b.PendingOut.Equal(o.PendingOut) &&
		b.Net.Equal(o.Net)
}

// MonthBalance is a Balance restricted to one calendar month.
type MonthBalance struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"` // 1-12
	Balance Balance `json:"balance"`
	Count   int     `json:"count"`
}
