package importer

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/expenso-dev/expenso/internal/classify"
	"github.com/expenso-dev/expenso/internal/fields"
	"github.com/expenso-dev/expenso/internal/logger"
	"github.com/expenso-dev/expenso/internal/model"
)

// DefaultEmailSource tags email transactions whose bank or wallet is unknown.
const DefaultEmailSource = "Email Import"

// Refinement narrows a debit or credit email to a more specific type.
type Refinement struct {
	Keywords []string
	Type     model.TransactionType
}

// EmailPatterns is the table of keywords and expressions used to read
// transaction notification emails. All keywords are lower-case.
type EmailPatterns struct {
	// Triggers gate whether an email is a transaction notification at all.
	Triggers []string
	Amount   *regexp.Regexp
	Date     *regexp.Regexp
	// DateLayouts are tried in order on the Date match.
	DateLayouts []string

	DebitKeywords     []string
	DebitRefinements  []Refinement
	CreditKeywords    []string
	CreditRefinements []Refinement

	// Descriptions are tried in order; group 1 is the counterparty.
	Descriptions      []*regexp.Regexp
	MaxDescriptionLen int
	// References are tried in order; group 1 is the reference.
	References []*regexp.Regexp
}

// DefaultEmailPatterns returns patterns for Indian bank and UPI app alerts.
func DefaultEmailPatterns() *EmailPatterns {
	return &EmailPatterns{
		Triggers: []string{
			"debited", "credited", "transaction", "payment", "upi",
			"transferred", "sent money", "received money", "spent", "withdrawn",
		},
		Amount:      regexp.MustCompile(`(?:Rs\.?|INR|₹)\s*([\d,]+(?:\.\d{2})?)`),
		Date:        regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		DateLayouts: fields.EmailLayouts,

		DebitKeywords: []string{"debited", "sent", "paid", "payment successful"},
		DebitRefinements: []Refinement{
			{Keywords: []string{"upi"}, Type: model.TypeUPISent},
			{Keywords: []string{"atm", "cash"}, Type: model.TypeATMWithdrawal},
			{Keywords: []string{"card", "pos"}, Type: model.TypeCardPayment},
			{Keywords: []string{"transfer"}, Type: model.TypeBankTransfer},
		},
		CreditKeywords: []string{"credited", "received"},
		CreditRefinements: []Refinement{
			{Keywords: []string{"upi"}, Type: model.TypeUPIReceived},
		},

		Descriptions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)to\s+([\w\s]+?)(?:on|for|UPI)`),
			regexp.MustCompile(`(?i)from\s+([\w\s]+?)(?:on|for|UPI)`),
			regexp.MustCompile(`(?i)at\s+([\w\s]+?)(?:on|for|UPI)`),
			regexp.MustCompile(`(?i)sent to\s+([\w\s]+)`),
			regexp.MustCompile(`(?i)received from\s+([\w\s]+)`),
		},
		MaxDescriptionLen: 50,
		References: []*regexp.Regexp{
			regexp.MustCompile(`UPI Ref No\s*:?\s*(\d+)`),
			regexp.MustCompile(`(?i)Ref(?:erence)?\s*(?:No\.?|#)?\s*:?\s*([A-Z0-9]+)`),
		},
	}
}

// Email is one message handed to the parser. Body is plain text.
type Email struct {
	Subject string
	Body    string
	Sender  string
	Date    time.Time // Date header, zero if absent; not used as a transaction date
}

// EmailParser extracts at most one transaction from a notification email.
// The zero value is ready to use.
type EmailParser struct {
	Patterns *EmailPatterns          // nil uses DefaultEmailPatterns
	Sources  *classify.SourceDetector // nil uses the default source rules
	Log      *zerolog.Logger          // nil disables logging
}

// Format returns the parser name.
func (p *EmailParser) Format() string { return "email" }

func (p *EmailParser) patterns() *EmailPatterns {
	if p.Patterns != nil {
		return p.Patterns
	}
	return defaultEmailPatterns
}

func (p *EmailParser) sources() *classify.SourceDetector {
	if p.Sources != nil {
		return p.Sources
	}
	return defaultSources
}

var (
	defaultEmailPatterns = DefaultEmailPatterns()
	defaultSources       = classify.NewSourceDetector(classify.DefaultRules().Sources, DefaultEmailSource)
)

// ParseMessage returns the transaction described by subject and body, or
// ok=false when the email is not a transaction notification or has no amount.
func (p *EmailParser) ParseMessage(subject, body string) (model.Transaction, bool) {
	pat := p.patterns()
	log := logger.Or(p.Log)
	combined := strings.ToLower(subject + " " + body)

	if !containsAny(combined, pat.Triggers) {
		log.Debug().Str("subject", subject).Msg("not a transaction email")
		return model.Transaction{}, false
	}

	amount, ok := fields.Amount(firstGroup(pat.Amount, body))
	if !ok || !amount.IsPositive() {
		log.Debug().Str("subject", subject).Msg("transaction email without amount")
		return model.Transaction{}, false
	}

	txn, err := model.NewTransaction(model.TransactionParams{
		Description:     p.description(pat, subject, body),
		Amount:          amount,
		Type:            emailType(pat, combined),
		Date:            fields.ParseDateWith(firstGroup(pat.Date, body), pat.DateLayouts),
		ReferenceNumber: reference(pat, body),
		Source:          p.sources().Detect(combined),
	})
	if err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("skipping email")
		return model.Transaction{}, false
	}
	return txn, true
}

// ParseEmail returns zero or one transactions for e.
func (p *EmailParser) ParseEmail(e Email) []model.Transaction {
	txn, ok := p.ParseMessage(e.Subject, e.Body)
	if !ok {
		return nil
	}
	return []model.Transaction{txn}
}

// ParseMany parses each email independently and concatenates the results
// in input order.
func (p *EmailParser) ParseMany(emails []Email) []model.Transaction {
	var txns []model.Transaction
	for _, e := range emails {
		txns = append(txns, p.ParseEmail(e)...)
	}
	return txns
}

// Parse reads one RFC 5322 message (an .eml file) and parses its subject and
// plain-text body.
func (p *EmailParser) Parse(r io.Reader) ([]model.Transaction, error) {
	if r == nil {
		return nil, fmt.Errorf("reading email: %w", errNilReader)
	}
	e, err := ReadEmail(r)
	if err != nil {
		return nil, err
	}
	return p.ParseEmail(e), nil
}

// ReadEmail decodes an RFC 5322 message into an Email, picking the first
// text/plain part of multipart bodies.
func ReadEmail(r io.Reader) (Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return Email{}, fmt.Errorf("reading email: %w", err)
	}

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		subject = msg.Header.Get("Subject")
	}

	body, err := textBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return Email{}, fmt.Errorf("reading email body: %w", err)
	}
	sent, _ := msg.Header.Date()
	return Email{Subject: subject, Body: body, Sender: msg.Header.Get("From"), Date: sent}, nil
}

func textBody(contentType, encoding string, r io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return "", nil
			}
			if err != nil {
				return "", err
			}
			body, err := textBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				return "", err
			}
			if body != "" {
				return body, nil
			}
		}
	}
	if mediaType != "text/plain" {
		return "", nil
	}

	if strings.EqualFold(strings.TrimSpace(encoding), "quoted-printable") {
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func emailType(pat *EmailPatterns, combined string) model.TransactionType {
	if containsAny(combined, pat.DebitKeywords) {
		return refine(combined, pat.DebitRefinements, model.TypeDebit)
	}
	if containsAny(combined, pat.CreditKeywords) {
		return refine(combined, pat.CreditRefinements, model.TypeCredit)
	}
	return model.TypeOther
}

func refine(text string, refinements []Refinement, fallback model.TransactionType) model.TransactionType {
	for _, r := range refinements {
		if containsAny(text, r.Keywords) {
			return r.Type
		}
	}
	return fallback
}

func (p *EmailParser) description(pat *EmailPatterns, subject, body string) string {
	for _, re := range pat.Descriptions {
		desc := strings.TrimSpace(firstGroup(re, body))
		if desc != "" && utf8.RuneCountInString(desc) < pat.MaxDescriptionLen {
			return desc
		}
	}
	return truncateRunes(subject, pat.MaxDescriptionLen)
}

func reference(pat *EmailPatterns, body string) string {
	for _, re := range pat.References {
		if ref := firstGroup(re, body); ref != "" {
			return ref
		}
	}
	return ""
}

// firstGroup returns capture group 1 of the first match, or "".
func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
