package bot

import (
	"errors"
	"fmt"
	"time"

	"discord-warden/enforcement"

	"github.com/bwmarrin/discordgo"
)

// sessionModerationAPI implements enforcement.ModerationAPI over a
// discordgo session. All failures are classified into the enforcement
// error taxonomy so the sweep can decide between retry and cancel.
type sessionModerationAPI struct {
	session *discordgo.Session
}

func (a *sessionModerationAPI) Timeout(guildID, userID string, until time.Time) error {
	if err := a.session.GuildMemberTimeout(guildID, userID, &until); err != nil {
		return classify("timeout member", err)
	}
	return nil
}

func (a *sessionModerationAPI) RemoveTimeout(guildID, userID string) error {
	if err := a.session.GuildMemberTimeout(guildID, userID, nil); err != nil {
		return classify("remove member timeout", err)
	}
	return nil
}

func (a *sessionModerationAPI) SetVoiceMute(guildID, userID string, mute bool) error {
	if err := a.session.GuildMemberMute(guildID, userID, mute); err != nil {
		return classify("set voice mute", err)
	}
	return nil
}

func (a *sessionModerationAPI) SetVoiceDeafen(guildID, userID string, deafen bool) error {
	if err := a.session.GuildMemberDeafen(guildID, userID, deafen); err != nil {
		return classify("set voice deafen", err)
	}
	return nil
}

func (a *sessionModerationAPI) VoiceDisconnect(guildID, userID string) error {
	if err := a.session.GuildMemberMove(guildID, userID, nil); err != nil {
		return classify("disconnect member from voice", err)
	}
	return nil
}

func (a *sessionModerationAPI) MoveToVoiceChannel(guildID, userID, channelID string) error {
	if err := a.session.GuildMemberMove(guildID, userID, &channelID); err != nil {
		return classify("move member to voice channel", err)
	}
	return nil
}

func (a *sessionModerationAPI) VoiceChannels(guildID string) ([]string, error) {
	channels, err := a.session.GuildChannels(guildID)
	if err != nil {
		return nil, classify("list guild channels", err)
	}
	var voice []string
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildVoice {
			voice = append(voice, ch.ID)
		}
	}
	return voice, nil
}

func (a *sessionModerationAPI) CurrentVoiceChannel(guildID, userID string) (string, error) {
	vs, err := a.session.State.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return "", fmt.Errorf("%w: user %s is not in voice in guild %s", enforcement.ErrEntityGone, userID, guildID)
		}
		return "", classify("look up voice state", err)
	}
	return vs.ChannelID, nil
}

// classify maps discord REST failures onto the enforcement error taxonomy.
// Unknown-entity responses mean the target will never resolve; everything
// else is treated as transient.
func classify(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownUser,
			discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeTargetIsNotConnectedToVoice:
			return fmt.Errorf("%s: %w: %v", op, enforcement.ErrEntityGone, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, enforcement.ErrExternalAPI, err)
}
