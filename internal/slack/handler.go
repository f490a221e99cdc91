package slack

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/slack-go/slack/slackevents"
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

type MessageHandler struct {
	client          Messenger
	commandHandler  *CommandHandler
	approvalHandler *ApprovalHandler
}

func NewMessageHandler(
	client Messenger,
	commandHandler *CommandHandler,
	approvalHandler *ApprovalHandler,
) *MessageHandler {
	return &MessageHandler{
		client:          client,
		commandHandler:  commandHandler,
		approvalHandler: approvalHandler,
	}
}

func (h *MessageHandler) HandleAppMention(ctx context.Context, event *slackevents.AppMentionEvent) error {
	if event.BotID != "" {
		return nil
	}
	return h.HandleCommand(ctx, event.Channel, event.Text)
}

// HandleCommand routes the text of a mention to a command.
func (h *MessageHandler) HandleCommand(ctx context.Context, channelID, text string) error {
	name, args := splitCommand(text)
	slog.Debug("📣 Command received", "command", name, "channel", channelID)

	switch name {
	case "", "help":
		return h.sendHelpMessage(channelID)

	case "score":
		return h.commandHandler.HandleScore(ctx, channelID, args)

	case "add":
		return h.commandHandler.HandleAdd(ctx, channelID, args)

	case "generate":
		message, postIDs, err := h.commandHandler.HandleGenerateDraft(ctx, channelID, args)
		if err != nil {
			slog.Error("❌ Failed to generate drafts", "error", err)
			return h.client.SendMessage(channelID, "❌ "+err.Error())
		}
		messageTS, err := h.client.SendMessageAndGetTS(channelID, message)
		if err != nil {
			return err
		}
		h.approvalHandler.StoreDraftMessage(messageTS, postIDs)
		return nil

	case "improve":
		return h.commandHandler.HandleImprove(ctx, channelID, firstField(args))

	case "list", "drafts":
		fields := strings.Fields(args)
		if name == "drafts" {
			fields = append(fields, "draft")
		}
		return h.commandHandler.HandleList(ctx, channelID, fields)

	case "find", "search":
		return h.commandHandler.HandleFind(ctx, channelID, args)

	case "schedule":
		return h.commandHandler.HandleSchedule(ctx, channelID, strings.Fields(args))

	case "reschedule":
		return h.commandHandler.HandleReschedule(ctx, channelID, strings.Fields(args))

	case "unschedule":
		return h.commandHandler.HandleUnschedule(ctx, channelID, firstField(args))

	case "delete":
		return h.commandHandler.HandleDelete(ctx, channelID, firstField(args))

	case "view", "show":
		fields := strings.Fields(strings.ToLower(args))
		if len(fields) == 0 || fields[0] != "schedule" {
			return h.sendHelpMessage(channelID)
		}
		days := 7
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				days = n
			}
		}
		return h.commandHandler.HandleViewSchedule(ctx, channelID, days)

	case "stats":
		return h.commandHandler.HandleStats(ctx, channelID)
	}

	return h.client.SendMessage(channelID, "🤔 I don't know that command. Try `help`.")
}

// splitCommand strips bot mentions and returns the lowercased command word and
// the untouched remainder.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
	name, args := cutSpace(text)
	return strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(args)
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (h *MessageHandler) sendHelpMessage(channelID string) error {
	helpText := `*Post Scheduler Bot*

I score, draft and schedule your social media posts!

*Commands:*
- ` + "`score [options] caption`" + ` - Score a caption without saving it
- ` + "`add [options] caption`" + ` - Save a post
- ` + "`generate [category:name] topic`" + ` - AI caption drafts
- ` + "`improve <id>`" + ` - Rewrite a post using its feedback
- ` + "`list [queued|scheduled|draft|all] [asc|desc]`" + ` - List posts
- ` + "`find text`" + ` - Search captions
- ` + "`schedule [1-4]`" + ` - Schedule queued posts, N per day
- ` + "`reschedule <id> <YYYY-MM-DD>`" + ` - Move a post
- ` + "`unschedule <id>`" + ` / ` + "`delete <id>`" + `
- ` + "`view schedule [days]`" + ` - See the posting calendar
- ` + "`stats`" + ` - Show statistics

*Options:* ` + "`category:name` `+image` `+video` `date:YYYY-MM-DD`" + `

*Scoring:* length 50-200 chars, a posting date, an image or video, a category,
hashtags and a call to action all add points. Ending with a question is a tip.`

	return h.client.SendMessage(channelID, helpText)
}
