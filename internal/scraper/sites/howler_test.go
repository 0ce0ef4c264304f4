package sites

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
)

const (
	howlerURL       = "https://www.howler.co.za/events/sunset-sessions-2025"
	howlerTicketURL = "https://ag.howler.co.za/events/1234/tickets"
)

const howlerEventPage = `<html><body><div class="page-wrapper">
 <div class="event-hero"><div class="inset-x--large-on-medium"><div class="event-hero__content">
   <img src="https://images.howler.co.za/hero.jpg">
   <h1 class="t-display">Sunset Sessions</h1>
 </div></div></div>
 <div class="event-bar">
  <div class="event-bar__info">
   <div class="event-detail event-detail__date flex flex--align-items--center">
    <a href="#">19:00 - 23:00 SAST (+02:00)</a>
    <h3>14 Jun 2025 SAST (+02:00)</h3>
   </div>
   <div class="event-detail event-detail__venue flex flex--align-items--center">
    <h3>The Old Biscuit Mill</h3>
    <a href="#">373 Albert Rd, Woodstock, Cape Town</a>
   </div>
  </div>
  <div class="event-bar__action"><a href="/events/1234/tickets">Buy tickets</a></div>
 </div>
 <div class="event-carousel"><div class="event-section__content">
  <p>Live DJs all night.</p>
  <p>Food trucks on site.</p>
 </div></div>
</div></body></html>`

const howlerAccordionPage = `<html><body>
<div class="purchase-process-wrapper"><div class="ticket-selection-layout__main">
<form id="ticket_order_form" action="/ticket_order/tickets">
<div class="accordion-content ticket-selection__accordion-content">
 <div class="ticket"><div class="ticket__price">R 150.00</div></div>
 <div class="ticket"><div class="ticket-info__booking-status">Sold out</div><div class="ticket__price">R 100.00</div></div>
 <div class="ticket"><div class="ticket__price">R1,250.50</div></div>
</div>
</form>
</div></div>
</body></html>`

const howlerLoosePage = `<html><body>
<div class="purchase-process-wrapper"><div class="ticket-selection-layout__main">
<form id="ticket_order_form" action="/ticket_order/tickets">
 <div class="ticket-selection ticket-selection--loose-ticket"><div class="ticket__price">R80</div></div>
 <div class="ticket-selection ticket-selection--loose-ticket"><div class="ticket-info__booking-status">Sold out</div><div class="ticket__price">R60</div></div>
 <div class="ticket-selection ticket-selection--loose-ticket"><div class="ticket__price">Free</div></div>
</form>
</div></div>
</body></html>`

var howlerNow = time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

func TestParseHowler(t *testing.T) {
	got := ParseHowler(mustDoc(t, howlerEventPage, howlerURL), howlerURL, howlerNow)

	require.Equal(t, "Sunset Sessions", got.Title)
	require.Equal(t, "Live DJs all night.\nFood trucks on site.", got.Description)
	require.Equal(t, "The Old Biscuit Mill", got.Venue)
	require.Equal(t, "373 Albert Rd, Woodstock, Cape Town", got.Location)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	require.Equal(t, dateparse.Naive(2025, time.June, 14, 19, 0), *got.StartDate)
	require.Equal(t, dateparse.Naive(2025, time.June, 14, 23, 0), *got.EndDate)
	require.Equal(t, "https://images.howler.co.za/hero.jpg", got.ImageURL)
	require.Equal(t, domain.SourceHowler, got.Source)

	href, ok := HowlerTicketHref(mustDoc(t, howlerEventPage, howlerURL))
	require.True(t, ok)
	require.Equal(t, "/events/1234/tickets", href)
}

func TestParseHowler_Sentinels(t *testing.T) {
	got := ParseHowler(mustDoc(t, "<html><body><div class=\"page-wrapper\"></div></body></html>", howlerURL), howlerURL, howlerNow)

	require.Equal(t, domain.UnknownEvent, got.Title)
	require.Equal(t, domain.UnknownVenue, got.Venue)
	require.Equal(t, domain.UnknownLocation, got.Location)
	require.Nil(t, got.StartDate)
	require.Empty(t, got.ImageURL)
}

func TestParseHowlerTickets(t *testing.T) {
	t.Run("accordion layout", func(t *testing.T) {
		got := ParseHowlerTickets(mustDoc(t, howlerAccordionPage, howlerTicketURL))
		require.Equal(t, []domain.Price{
			{Type: domain.PriceGeneral, Price: "150"},
			{Type: domain.PriceGeneral, Price: "1250"},
		}, got)
	})

	t.Run("loose ticket layout", func(t *testing.T) {
		got := ParseHowlerTickets(mustDoc(t, howlerLoosePage, howlerTicketURL))
		require.Equal(t, []domain.Price{{Type: domain.PriceGeneral, Price: "80"}}, got)
	})

	t.Run("form with another action", func(t *testing.T) {
		page := `<div class="purchase-process-wrapper"><div class="ticket-selection-layout__main">
<form id="ticket_order_form" action="/other"><div class="ticket-selection ticket-selection--loose-ticket"><div class="ticket__price">R80</div></div></form>
</div></div>`
		require.Empty(t, ParseHowlerTickets(mustDoc(t, page, howlerTicketURL)))
	})
}

func TestHowler_ExtractFollowsTicketPage(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{
		howlerURL:       howlerEventPage,
		howlerTicketURL: howlerAccordionPage,
	}}
	ex := NewHowler(discardLogger(), f, "")
	ex.now = func() time.Time { return howlerNow }

	got, err := ex.Extract(context.Background(), howlerURL)
	require.NoError(t, err)
	require.Equal(t, []string{howlerURL, howlerTicketURL}, f.requested)
	require.Len(t, got.Prices, 2)
}

func TestHowler_ExtractWithoutTicketPage(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{howlerURL: howlerEventPage}}
	ex := NewHowler(discardLogger(), f, "https://tickets.example.com/")

	got, err := ex.Extract(context.Background(), howlerURL)
	require.NoError(t, err)
	require.Equal(t, "https://tickets.example.com/events/1234/tickets", f.requested[1])
	require.Empty(t, got.Prices)
	require.Equal(t, "Sunset Sessions", got.Title)
}
