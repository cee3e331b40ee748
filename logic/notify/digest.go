package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"procurement-radar/types"
	"procurement-radar/vars"

	"github.com/shopspring/decimal"
)

// Subject is the digest subject line for n lots.
func Subject(n int) string {
	return fmt.Sprintf("Новые закупки (%d)", n)
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"rub":  FormatRub,
	"date": FormatDate,
}).Parse(`<p>Подходящие новые лоты:</p>
<ul>
{{- range .Lots}}
<li><b>{{.Title}}</b>: {{rub .Budget}}, дедлайн {{date .Deadline}}, заказчик {{with .CustomerName}}{{.}}{{else}}-{{end}}, № {{.LotNumber}}{{with .URL}} (<a href="{{.}}">ссылка</a>){{end}}</li>
{{- end}}
</ul>
<p>Это автописьмо бота {{.App}}.</p>
`))

// RenderDigest builds the HTML body listing every lot.
func RenderDigest(lots []types.Lot) (string, error) {
	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, struct {
		Lots []types.Lot
		App  string
	}{Lots: lots, App: vars.AppName})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatRub renders 1250000.5 as "1 250 001 ₽".
func FormatRub(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₽"
	if neg {
		out = "-" + out
	}
	return out
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
