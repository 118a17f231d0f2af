/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"time"
)

const (
	// DuplicateWorkerSubject is the subject line of every duplicate registration alert.
	DuplicateWorkerSubject = "🚨 Tentative d'enregistrement d'un ouvrier déjà actif"

	// MissingValue replaces empty event fields in rendered output.
	MissingValue = "non renseigné"

	dateLayout = "02/01/2006"
	timeLayout = "15:04:05"
)

// SectionKind selects how a section is laid out by the renderers.
type SectionKind string

const (
	SectionBanner  SectionKind = "banner"
	SectionDetails SectionKind = "details"
	SectionActions SectionKind = "actions"
	SectionLink    SectionKind = "link"
	SectionNotice  SectionKind = "notice"
	SectionFooter  SectionKind = "footer"
)

// Tone marks a value that the rich rendering highlights.
type Tone string

const (
	ToneNone  Tone = ""
	ToneAlert Tone = "alert"
	ToneOK    Tone = "ok"
)

// Span is a run of text inside a paragraph.
type Span struct {
	Text   string
	Strong bool
	Tone   Tone
}

// Field is a labelled fact of the details block.
type Field struct {
	Label string
	Value string
	Tone  Tone
}

// Step is one recommended action.
type Step struct {
	Title string
	Text  string
}

// Link is a call to action.
type Link struct {
	Icon  string
	Label string
	URL   string
}

// Section is one block of a Document. Only the fields relevant to Kind are set.
type Section struct {
	Kind   SectionKind
	Title  string
	Intro  string
	Spans  []Span
	Fields []Field
	Steps  []Step
	Link   *Link
	Lines  []string
}

// Document is the presentation-independent form of a notification. Both the
// HTML and the plain-text renderings are produced from the same Document, so
// they always carry the same facts in the same order.
type Document struct {
	Subject  string
	Heading  string
	Tagline  string
	Sections []Section
}

// Compose turns a duplicate registration event into a Document. now is the
// single render-time capture used for the "sent at" footer; every timestamp
// is shown in loc (process local time when nil).
func Compose(event *DuplicateWorkerEvent, now time.Time, loc *time.Location) Document {
	if loc == nil {
		loc = time.Local
	}
	w := event.worker()
	a := event.attempt()

	name := orPlaceholder(w.Name)
	cin := orPlaceholder(w.CIN)
	currentFarm := orPlaceholder(w.CurrentFarm)
	attemptingFarm := orPlaceholder(a.AttemptingFarm)
	attemptAt := a.AttemptDate.In(loc)
	attemptDate := formatDate(attemptAt, loc)
	attemptTime := formatTime(attemptAt, loc)

	details := []Field{
		{Label: "Ouvrier concerné:", Value: name},
		{Label: "CIN:", Value: cin},
		{Label: "Exploitation actuelle:", Value: currentFarm, Tone: ToneOK},
		{Label: "Exploitation tentante:", Value: attemptingFarm, Tone: ToneAlert},
		{Label: "Date de la tentative:", Value: attemptDate + " à " + attemptTime},
		{Label: "Date d'entrée proposée:", Value: formatDate(a.AttemptedEntry.In(loc), loc)},
	}
	if a.AttemptedRoom != "" {
		details = append(details, Field{Label: "Chambre proposée:", Value: a.AttemptedRoom})
	}

	return Document{
		Subject: DuplicateWorkerSubject,
		Heading: "🚨 Alerte Système",
		Tagline: "Tentative d'enregistrement d'un ouvrier déjà actif",
		Sections: []Section{
			{
				Kind:  SectionBanner,
				Title: "⚠️ Détection de doublon",
				Spans: []Span{
					{Text: "Une tentative d'enregistrement a été effectuée pour l'ouvrier "},
					{Text: name, Strong: true},
					{Text: " (CIN: "},
					{Text: cin, Strong: true},
					{Text: ") le "},
					{Text: attemptDate, Strong: true},
					{Text: " à "},
					{Text: attemptTime, Strong: true},
					{Text: ", dans l'exploitation "},
					{Text: attemptingFarm, Strong: true, Tone: ToneAlert},
					{Text: ", alors qu'il est toujours actif dans votre exploitation "},
					{Text: currentFarm, Strong: true, Tone: ToneOK},
					{Text: "."},
				},
			},
			{
				Kind:   SectionDetails,
				Title:  "📋 Détails de la tentative",
				Fields: details,
			},
			{
				Kind:  SectionActions,
				Title: "🔄 Actions requises",
				Intro: "Veuillez vérifier le statut de l'ouvrier et prendre les mesures appropriées :",
				Steps: []Step{
					{
						Title: "Si l'ouvrier a quitté votre exploitation",
						Text:  `Marquez-le comme "inactif" dans le système avec sa date de sortie`,
					},
					{
						Title: "Si l'ouvrier est toujours actif chez vous",
						Text:  "Contactez immédiatement l'exploitation " + attemptingFarm,
					},
					{
						Title: "Si c'est un transfert officiel",
						Text:  "Utilisez la procédure de transfert appropriée dans le système",
					},
				},
			},
			{
				Kind: SectionLink,
				Link: &Link{Icon: "🔗", Label: "Voir le profil de l'ouvrier", URL: w.ProfileLink},
			},
			{
				Kind: SectionNotice,
				Spans: []Span{
					{Text: "⚠️ Important:", Strong: true},
					{Text: " L'enregistrement de l'ouvrier a été automatiquement bloqué jusqu'à résolution de ce conflit."},
				},
			},
			{
				Kind: SectionFooter,
				Lines: []string{
					"Cette notification a été générée automatiquement par le système de gestion des ouvriers.",
					"Date d'envoi: " + formatDate(now, loc) + " à " + formatTime(now, loc),
				},
			},
		},
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return MissingValue
	}
	return s
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return MissingValue
	}
	return t.In(loc).Format(dateLayout)
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return MissingValue
	}
	return t.In(loc).Format(timeLayout)
}

// FormatDateTime renders t the way every notification does, e.g. "14/10/2026 09:05:03".
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return formatDate(t, loc) + " " + formatTime(t, loc)
}
