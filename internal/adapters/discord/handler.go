// Package discord adapts the Discord gateway to the daily log and the
// summary pipeline: message ingestion on an allow-list of channels plus the
// in-chat command surface.
package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
)

type dayStore interface {
	Record(channel string, msg domain.ChatMessage)
	Snapshot() domain.DailyLog
}

type summaryRunner interface {
	Run(ctx context.Context) error
}

// Handler routes gateway events to the store and commands.
type Handler struct {
	log         zerolog.Logger
	store       dayStore
	pipeline    summaryRunner
	monitored   map[string]struct{}
	prefix      string
	summaryTime string
	pdfTime     string
}

// NewHandler creates the handler. channels is the monitored allow-list.
func NewHandler(logger zerolog.Logger, store dayStore, pipeline summaryRunner, channels []string, prefix, summaryTime, pdfTime string) *Handler {
	monitored := make(map[string]struct{}, len(channels))
	for _, name := range channels {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		monitored[name] = struct{}{}
	}
	if prefix == "" {
		prefix = "!goonzette"
	}
	return &Handler{
		log:         logger,
		store:       store,
		pipeline:    pipeline,
		monitored:   monitored,
		prefix:      prefix,
		summaryTime: summaryTime,
		pdfTime:     pdfTime,
	}
}

// Register attaches the handler to the session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(h.onMessageCreate)
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers
}

func (h *Handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// Commands count as channel activity too; record first, then handle.
	h.ingest(h.channelName(s, m.ChannelID), m.Message)
	if strings.HasPrefix(m.Content, h.prefix) {
		h.handleCommand(s, m)
	}
}

func (h *Handler) ingest(channel string, m *discordgo.Message) {
	if _, ok := h.monitored[channel]; !ok {
		return
	}
	h.store.Record(channel, domain.ChatMessage{
		Author:      m.Author.Username,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		Reactions:   len(m.Reactions),
		Attachments: len(m.Attachments) > 0,
	})
}

func (h *Handler) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	command := parseCommand(m.Content, h.prefix)
	switch command {
	case "summary":
		h.handleSummary(s, m)
	case "stats":
		h.reply(s, m.ChannelID, statsMessage(h.store.Snapshot()))
	case "help":
		h.reply(s, m.ChannelID, helpMessage(h.prefix, h.summaryTime, h.pdfTime))
	default:
		h.reply(s, m.ChannelID, fmt.Sprintf("Unknown command. Try `%s help`", h.prefix))
	}
}

func (h *Handler) handleSummary(s *discordgo.Session, m *discordgo.MessageCreate) {
	snapshot := h.store.Snapshot()
	if snapshot.TotalMessages == 0 {
		h.reply(s, m.ChannelID, "No messages collected today yet!")
		return
	}
	h.reply(s, m.ChannelID, fmt.Sprintf(
		"**Today's Discord Activity:**\nTotal Messages: %d\nActive Channels: %d\n\nGenerating full summary...",
		snapshot.TotalMessages, len(snapshot.Channels)))

	go func() {
		if err := h.pipeline.Run(context.Background()); err != nil {
			h.log.Error().Err(err).Msg("discord: manual summary failed")
			h.reply(s, m.ChannelID, "Could not generate the summary, try again later.")
			return
		}
		h.reply(s, m.ChannelID, "Daily summary generated and sent to the website!")
	}()
}

func (h *Handler) channelName(s *discordgo.Session, channelID string) string {
	channel, err := s.State.Channel(channelID)
	if err != nil {
		channel, err = s.Channel(channelID)
		if err != nil {
			h.log.Debug().Err(err).Str("channel_id", channelID).Msg("discord: resolve channel failed")
			return ""
		}
	}
	return channel.Name
}

func (h *Handler) reply(s *discordgo.Session, channelID, text string) {
	if _, err := s.ChannelMessageSend(channelID, text); err != nil {
		h.log.Error().Err(err).Str("channel_id", channelID).Msg("discord: send message failed")
	}
}

// parseCommand extracts the subcommand that follows the prefix.
func parseCommand(content, prefix string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return ""
	}
	return strings.Fields(rest)[0]
}

func statsMessage(snapshot domain.DailyLog) string {
	names := make([]string, 0, len(snapshot.Channels))
	for name := range snapshot.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "**Today's Stats:**\nTotal Messages: %d\n\n", snapshot.TotalMessages)
	if len(names) == 0 {
		b.WriteString("No activity yet today")
		return b.String()
	}
	for _, name := range names {
		fmt.Fprintf(&b, "**#%s**: %d messages\n", name, len(snapshot.Channels[name]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func helpMessage(prefix, summaryTime, pdfTime string) string {
	return fmt.Sprintf(`**Goonzette Bot Commands:**
`+"`%s summary`"+` - Generate today's Discord summary
`+"`%s stats`"+` - Show message stats
`+"`%s help`"+` - Show this message

The bot automatically:
- Monitors selected channels
- Generates daily summaries at %s
- Triggers PDF generation at %s`, prefix, prefix, prefix, summaryTime, pdfTime)
}
