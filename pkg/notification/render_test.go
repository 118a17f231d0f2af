package notification

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderTime = time.Date(2024, 3, 5, 16, 30, 0, 0, time.UTC)

func sampleEvent() DuplicateWorkerEvent {
	return DuplicateWorkerEvent{
		Type:       EventDuplicateWorkerAttempt,
		AdminEmail: "admin@farm-a.example",
		ExistingWorker: &ExistingWorker{
			Name:        "Ali",
			CIN:         "AB123",
			CurrentFarm: "Farm A",
			ProfileLink: "http://x/1",
		},
		AttemptDetails: &AttemptDetails{
			AttemptingFarm: "Farm B",
			AttemptDate:    Timestamp{Time: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)},
			AttemptedEntry: Timestamp{Time: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestRenderCarriesEventFacts(t *testing.T) {
	ev := sampleEvent()

	msg, err := Render(&ev, renderTime, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, DuplicateWorkerSubject, msg.Subject)
	for _, body := range []string{msg.HTML, msg.Text} {
		assert.Contains(t, body, "Ali")
		assert.Contains(t, body, "AB123")
		assert.Contains(t, body, "Farm A")
		assert.Contains(t, body, "Farm B")
		assert.Contains(t, body, "http://x/1")
		assert.Contains(t, body, "05/03/2024")
		assert.Contains(t, body, "14:07:09")
		assert.Contains(t, body, "06/03/2024")
		assert.Contains(t, body, "05/03/2024 à 16:30:00")
		assert.NotContains(t, body, "Chambre proposée")
	}

	assert.Contains(t, msg.HTML, `href="http://x/1"`)
	assert.Contains(t, msg.Text, "- Date de la tentative: 05/03/2024 à 14:07:09")
	assert.Contains(t, msg.Text, "2. Si l'ouvrier est toujours actif chez vous: Contactez immédiatement l'exploitation Farm B")
	assert.Contains(t, msg.Text, "🔗 Voir le profil de l'ouvrier: http://x/1")
	assert.True(t, strings.HasPrefix(msg.Text, "🚨 ALERTE SYSTÈME - "), msg.Text)
	assert.Equal(t, strings.TrimSpace(msg.Text), msg.Text)
}

func TestRenderAttemptedRoom(t *testing.T) {
	ev := sampleEvent()
	ev.AttemptDetails.AttemptedRoom = "R-12"

	msg, err := Render(&ev, renderTime, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(msg.HTML, "Chambre proposée"))
	assert.Equal(t, 1, strings.Count(msg.Text, "Chambre proposée"))
	assert.Contains(t, msg.HTML, "R-12")
	assert.Contains(t, msg.Text, "- Chambre proposée: R-12")
}

func TestRenderPlaceholders(t *testing.T) {
	ev := sampleEvent()
	ev.ExistingWorker.Name = ""
	ev.AttemptDetails.AttemptingFarm = ""

	msg, err := Render(&ev, renderTime, time.UTC)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "- Ouvrier concerné: "+MissingValue)
	assert.Contains(t, msg.Text, "Contactez immédiatement l'exploitation "+MissingValue)
	assert.Contains(t, msg.HTML, MissingValue)
}

func TestRenderEscapesHTML(t *testing.T) {
	ev := sampleEvent()
	ev.ExistingWorker.Name = "<script>alert(1)</script>"

	msg, err := Render(&ev, renderTime, time.UTC)
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "<script>alert(1)</script>")
}

func TestRenderUsesLocation(t *testing.T) {
	plusOne := time.FixedZone("UTC+1", 3600)
	ev := sampleEvent()

	msg, err := Render(&ev, renderTime, plusOne)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "05/03/2024 à 15:07:09")
	assert.Contains(t, msg.Text, "05/03/2024 à 17:30:00")
}

func TestRenderProfileLinkVerbatim(t *testing.T) {
	tests := []struct {
		link string
		href string
	}{
		{link: "app://workers/1", href: `href="app://workers/1"`},
		{link: "javascript:alert(1)", href: `href="javascript:alert(1)"`},
		{link: "http://x/ouvrier/é", href: `href="http://x/ouvrier/é"`},
		{link: `http://x/?a="b"&c=1`, href: `href="http://x/?a=&#34;b&#34;&amp;c=1"`},
		{link: "", href: `href=""`},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			ev := sampleEvent()
			ev.ExistingWorker.ProfileLink = tt.link

			msg, err := Render(&ev, renderTime, time.UTC)
			require.NoError(t, err)
			assert.Contains(t, msg.HTML, tt.href)
			assert.NotContains(t, msg.HTML, "ZgotmplZ")
			assert.Contains(t, msg.Text, "Voir le profil de l'ouvrier: "+tt.link)
		})
	}
}

func TestRenderZonelessTimestampsInConfiguredLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	var ev DuplicateWorkerEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "duplicate_worker_attempt",
		"adminEmail": "admin@farm-a.example",
		"existingWorker": {"name": "Ali", "cin": "AB123", "currentFarm": "Farm A", "profileLink": "http://x/1"},
		"attemptDetails": {"attemptingFarm": "Farm B", "attemptDate": "2024-03-05T14:07:09", "attemptedEntry": "2024-03-06"}
	}`), &ev))

	for _, loc := range []*time.Location{paris, time.FixedZone("-03", -3*60*60)} {
		msg, err := Render(&ev, renderTime, loc)
		require.NoError(t, err)
		for _, body := range []string{msg.HTML, msg.Text} {
			assert.Contains(t, body, "05/03/2024 à 14:07:09", loc.String())
			assert.Contains(t, body, "06/03/2024", loc.String())
		}
	}
}

func TestComposeSectionOrder(t *testing.T) {
	ev := sampleEvent()
	doc := Compose(&ev, renderTime, time.UTC)

	var kinds []SectionKind
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []SectionKind{
		SectionBanner, SectionDetails, SectionActions, SectionLink, SectionNotice, SectionFooter,
	}, kinds)
	assert.Len(t, doc.Sections[1].Fields, 6)
	assert.Len(t, doc.Sections[2].Steps, 3)
	require.NotNil(t, doc.Sections[3].Link)
	assert.Equal(t, "http://x/1", doc.Sections[3].Link.URL)
}

func TestComposeToleratesMissingSections(t *testing.T) {
	doc := Compose(&DuplicateWorkerEvent{}, renderTime, nil)
	require.Len(t, doc.Sections, 6)
	assert.Equal(t, MissingValue, doc.Sections[1].Fields[0].Value)
}

func TestRenderTestEmail(t *testing.T) {
	msg, err := RenderTestEmail(renderTime, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, TestEmailSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "✅ Test de connexion réussi")
	assert.Contains(t, msg.HTML, "05/03/2024 16:30:00")
	assert.Equal(t, "Test de connexion email réussi. Date: 05/03/2024 16:30:00", strings.TrimSpace(msg.Text))
}
