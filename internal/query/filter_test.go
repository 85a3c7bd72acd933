package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/core"
)

var today = core.NewDate(2024, 6, 15)

func bookings() []core.Booking {
	return []core.Booking{
		{ID: "past-joana", Date: core.NewDate(2024, 3, 2), CounterpartyName: "Joana & Miguel", ProviderName: "Studio Luz"},
		{ID: "today-rita", Date: today, CounterpartyName: "Rita Sousa", ProviderName: "Foto Norte"},
		{ID: "future-joana", Date: core.NewDate(2024, 9, 7), CounterpartyName: "Joana & Miguel", ProviderName: "Studio Luz"},
		{ID: "future-tiago", Date: core.NewDate(2024, 9, 7), CounterpartyName: "Tiago", ProviderName: "Foto Norte"},
	}
}

func ids(bs []core.Booking) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestFilterNoConstraints(t *testing.T) {
	got := Filter(bookings(), Spec{}, today)
	assert.Equal(t, []string{"past-joana", "today-rita", "future-joana", "future-tiago"}, ids(got))
}

func TestFilterTemporal(t *testing.T) {
	upcoming := Filter(bookings(), Spec{Temporal: TemporalUpcoming}, today)
	assert.Equal(t, []string{"today-rita", "future-joana", "future-tiago"}, ids(upcoming))

	past := Filter(bookings(), Spec{Temporal: TemporalPast}, today)
	assert.Equal(t, []string{"past-joana"}, ids(past))
}

func TestFilterTemporalIgnoresTimeOfDay(t *testing.T) {
	late := today
	late.Time = late.Time.Add(23 * 3600e9)
	bs := []core.Booking{{ID: "x", Date: core.Date{Time: today.Time.Add(1)}}}
	assert.Len(t, Filter(bs, Spec{Temporal: TemporalUpcoming}, late), 1)
	assert.Empty(t, Filter(bs, Spec{Temporal: TemporalPast}, late))
}

func TestFilterUpcomingWithRelevance(t *testing.T) {
	spec := Spec{Temporal: TemporalUpcoming, Relevance: NewRelevanceSet([]string{"joana"})}
	got := Filter(bookings(), spec, today)
	assert.Equal(t, []string{"future-joana"}, ids(got))
}

func TestFilterOnDateAppliesTogetherWithTemporal(t *testing.T) {
	day := core.NewDate(2024, 3, 2)

	got := Filter(bookings(), Spec{OnDate: &day}, today)
	assert.Equal(t, []string{"past-joana"}, ids(got))

	got = Filter(bookings(), Spec{OnDate: &day, Temporal: TemporalUpcoming}, today)
	assert.Empty(t, got)
}

func TestFilterNames(t *testing.T) {
	got := Filter(bookings(), Spec{Provider: "Foto Norte"}, today)
	assert.Equal(t, []string{"today-rita", "future-tiago"}, ids(got))

	got = Filter(bookings(), Spec{Provider: "all", Counterparty: "Tiago"}, today)
	assert.Equal(t, []string{"future-tiago"}, ids(got))

	// Name constraints are exact, not substring.
	assert.Empty(t, Filter(bookings(), Spec{Counterparty: "Tiag"}, today))
}

func TestFilterRelevanceIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(bookings(), Spec{Relevance: NewRelevanceSet([]string{"  NORTE ", "miguel"})}, today)
	assert.Equal(t, []string{"past-joana", "today-rita", "future-joana", "future-tiago"}, ids(got))

	got = Filter(bookings(), Spec{Relevance: NewRelevanceSet([]string{"sousa"})}, today)
	assert.Equal(t, []string{"today-rita"}, ids(got))
}

func TestFilterRelevanceWithoutMatchesIsEmptyNotError(t *testing.T) {
	got := Filter(bookings(), Spec{Relevance: NewRelevanceSet([]string{"nobody"})}, today)
	require.NotNil(t, got)
	assert.Empty(t, got)

	// A present but empty set constrains everything away; an absent one does not.
	assert.Empty(t, Filter(bookings(), Spec{Relevance: RelevanceSet{}}, today))
	assert.Len(t, Filter(bookings(), Spec{Relevance: nil}, today), 4)
}

func TestFilterMonotonicity(t *testing.T) {
	day := core.NewDate(2024, 9, 7)
	base := Spec{Temporal: TemporalUpcoming}
	constraints := []func(Spec) Spec{
		func(s Spec) Spec { s.OnDate = &day; return s },
		func(s Spec) Spec { s.Provider = "Studio Luz"; return s },
		func(s Spec) Spec { s.Counterparty = "Tiago"; return s },
		func(s Spec) Spec { s.Relevance = NewRelevanceSet([]string{"joana"}); return s },
		func(s Spec) Spec { s.Temporal = TemporalPast; return s },
	}

	specs := []Spec{{}, base}
	for _, add := range constraints {
		for _, s := range specs {
			without := len(Filter(bookings(), s, today))
			with := len(Filter(bookings(), add(s), today))
			if s.Temporal == "" || s.Temporal == TemporalAll {
				assert.LessOrEqual(t, with, without)
			}
		}
	}
}

func TestFilterIsPure(t *testing.T) {
	in := bookings()
	spec := Spec{Temporal: TemporalUpcoming, Relevance: NewRelevanceSet([]string{"joana"})}
	first := Filter(in, spec, today)
	second := Filter(in, spec, today)
	assert.Equal(t, first, second)
	assert.Equal(t, "past-joana", in[0].ID)
}

func TestParseTemporal(t *testing.T) {
	for in, want := range map[string]Temporal{"": TemporalAll, "ALL": TemporalAll, "upcoming": TemporalUpcoming, " past ": TemporalPast} {
		got, err := ParseTemporal(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTemporal("tomorrow")
	assert.Error(t, err)
}

func TestFilterTransactions(t *testing.T) {
	txs := []core.Transaction{
		{ID: "a", Date: core.NewDate(2024, 6, 1), Direction: core.Incoming, Status: core.StatusPending, Origin: core.OriginBooking},
		{ID: "b", Date: core.NewDate(2024, 6, 20), Direction: core.Outgoing, Status: core.StatusCompleted, Origin: core.OriginManual},
		{ID: "c", Date: core.NewDate(2024, 6, 20), Direction: core.Incoming, Status: core.StatusCompleted, Origin: core.OriginBooking},
	}

	got := FilterTransactions(txs, TransactionSpec{Direction: core.Incoming}, today)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got = FilterTransactions(txs, TransactionSpec{Temporal: TemporalUpcoming, Origin: core.OriginBooking}, today)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got = FilterTransactions(txs, TransactionSpec{Status: core.StatusCompleted, Direction: core.Outgoing}, today)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}
