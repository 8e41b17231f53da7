package middleware

import (
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
	LogsURL     string
}

// ErrorAlertMiddleware recovers panics in HTTP handlers and pushes an alert
// to a Slack webhook, deduplicating repeats within a cooldown window
type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.RWMutex
	alertCooldown time.Duration
}

func NewErrorAlertMiddleware(config SlackAlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute,
	}
}

// HTTPMiddleware wraps HTTP handlers with panic recovery and alerting
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				context := fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
				errorMsg := fmt.Sprintf("%s: PANIC - %v", context, rec)
				log.Printf("❌ %s", errorMsg)
				m.alertDeduplicated(errorMsg, context+" (PANIC)")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":"internal server error"}`)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AlertOnError reports a non-panic error through the same dedup pipeline
func (m *ErrorAlertMiddleware) AlertOnError(err error, context string) {
	m.alertDeduplicated(fmt.Sprintf("%s: %v", context, err), context)
}

func (m *ErrorAlertMiddleware) alertDeduplicated(errorMsg, context string) {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if lastAlert, exists := m.alertedErrors[hash]; exists {
		if time.Since(lastAlert) < m.alertCooldown {
			return
		}
	}

	go m.sendSlackAlert(errorMsg, context)
	m.alertedErrors[hash] = time.Now()
}

func (m *ErrorAlertMiddleware) sendSlackAlert(errorMsg, context string) {
	if m.config.WebhookURL == "" {
		return // Slack alerts disabled
	}

	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}

	message := &slack.WebhookMessage{
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewHeaderBlock(slack.NewTextBlockObject(
					slack.PlainTextType,
					fmt.Sprintf("🚨 %s%s Error Alert", envPrefix, m.config.AppName),
					true, false,
				)),
				slack.NewSectionBlock(nil, []*slack.TextBlockObject{
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", context), false, false),
				}, nil),
				slack.NewSectionBlock(slack.NewTextBlockObject(
					slack.MarkdownType,
					fmt.Sprintf("*Error:*\n```%s```", errorMsg),
					false, false,
				), nil, nil),
				slack.NewSectionBlock(slack.NewTextBlockObject(
					slack.MarkdownType,
					fmt.Sprintf("🔗 <%s|View Logs>", m.config.LogsURL),
					false, false,
				), nil, nil),
			},
		},
	}

	if err := slack.PostWebhook(m.config.WebhookURL, message); err != nil {
		log.Printf("❌ Failed to send Slack alert: %v", err)
	}
}
