package mail

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	codeSubject = "Tu código de verificación"
	linkSubject = "Verifica tu correo electrónico"
)

const codeHTML = `<!DOCTYPE html>
<html lang="es">
<body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
  <h2 style="color: #1f4e79;">{{.Store}}</h2>
  <p>Usa el siguiente código para verificar tu correo electrónico:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>El código expira en {{.Minutes}} minutos. Si no solicitaste este código, ignora este mensaje.</p>
</body>
</html>`

const linkHTML = `<!DOCTYPE html>
<html lang="es">
<body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
  <h2 style="color: #1f4e79;">{{.Store}}</h2>
  <p>Hola {{.Name}},</p>
  <p>Para activar tu cuenta, confirma tu correo electrónico:</p>
  <p><a href="{{.Link}}" style="background: #1f4e79; color: #fff; padding: 10px 18px; text-decoration: none;">Verificar correo</a></p>
  <p>El enlace es válido por {{.Hours}} horas.</p>
</body>
</html>`

var (
	codeTemplate = template.Must(template.New("code").Parse(codeHTML))
	linkTemplate = template.Must(template.New("link").Parse(linkHTML))
)

// message is a rendered email
type message struct {
	Subject string
	Text    string
	HTML    string
}

type codeData struct {
	Store   string
	Code    string
	Minutes int
}

type linkData struct {
	Store string
	Name  string
	Link  string
	Hours int
}

func renderCode(store, code string, ttl time.Duration) (*message, error) {
	data := codeData{Store: store, Code: code, Minutes: int(ttl.Minutes())}
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	text := "Tu código de verificación es " + code + ".\n" +
		"Expira en " + strconv.Itoa(data.Minutes) + " minutos."
	return &message{Subject: codeSubject, Text: text, HTML: buf.String()}, nil
}

func renderLink(store, name, link string, ttl time.Duration) (*message, error) {
	data := linkData{Store: store, Name: displayName(name), Link: link, Hours: int(ttl.Hours())}
	var buf bytes.Buffer
	if err := linkTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	text := "Hola " + data.Name + ",\n\n" +
		"Confirma tu correo electrónico en el siguiente enlace:\n" + link + "\n\n" +
		"El enlace es válido por " + strconv.Itoa(data.Hours) + " horas."
	return &message{Subject: linkSubject, Text: text, HTML: buf.String()}, nil
}

// displayName title-cases the recipient name, falling back to a generic greeting
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "cliente"
	}
	return cases.Title(language.Spanish).String(strings.ToLower(name))
}
