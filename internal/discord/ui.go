package discord

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sephii/wtm-bot/internal/game"
)

// messageRef identifies the Discord message that triggered a guess or a
// skip vote, so the outcome can be attached to it as a reaction.
type messageRef struct {
	ChannelID string
	MessageID string
}

var congratsMessages = []string{"yay", "correct", "nice", "good job", "👏", "you rock"}

// ui renders one game's events into a Discord channel.
type ui struct {
	session   *discordgo.Session
	channelID string
}

// attach subscribes a renderer to every event the game emits.
func attach(session *discordgo.Session, channelID string, g *game.Game) {
	u := &ui{session: session, channelID: channelID}

	g.Subscribe(game.EventNewShot, u.onEvent)
	g.Subscribe(game.EventCorrectGuess, u.onEvent)
	g.Subscribe(game.EventIncorrectGuess, u.onEvent)
	g.Subscribe(game.EventShotTimeout, u.onEvent)
	g.Subscribe(game.EventShotSkipped, u.onEvent)
	g.Subscribe(game.EventGameFinished, u.onEvent)
}

func (u *ui) onEvent(event game.Event) {
	switch ev := event.(type) {
	case game.NewShotEvent:
		u.newShot(ev)
	case game.CorrectGuessEvent:
		u.correctGuess(ev)
	case game.IncorrectGuessEvent:
		u.react(ev.Ref, "❌")
	case game.ShotTimeoutEvent:
		u.sendEmbed(&discordgo.MessageEmbed{
			Title:       "Time’s up! ⌛",
			Description: fmt.Sprintf("The movie was **%s**.", ev.Shot.Title),
		})
	case game.ShotSkippedEvent:
		u.react(ev.Ref, "👌")
		u.sendEmbed(&discordgo.MessageEmbed{
			Title:       "Shot skipped",
			Description: fmt.Sprintf("The movie was **%s**.", ev.Shot.Title),
		})
	case game.GameFinishedEvent:
		u.gameFinished(ev)
	}
}

func (u *ui) newShot(ev game.NewShotEvent) {
	imageURL := ev.Shot.ImageURL
	filename := imageURL[strings.LastIndex(imageURL, "/")+1:]

	_, err := u.session.ChannelMessageSendComplex(u.channelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       "Guess the movie! ⬆",
			Description: "To skip it, send `@WhatTheMovie skip`.",
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d / %d", ev.Number, ev.Total)},
		},
		Files: []*discordgo.File{
			{Name: filename, Reader: bytes.NewReader(ev.Shot.ImageData)},
		},
	})
	if err != nil {
		log().WithError(err).Error("unable to send shot")
	}
}

func (u *ui) correctGuess(ev game.CorrectGuessEvent) {
	u.react(ev.Ref, "✅")

	congrats := congratsMessages[rand.Intn(len(congratsMessages))]
	ptsLabel := "pts"
	if ev.Points < 2 {
		ptsLabel = "pt"
	}
	multiplier := ev.Combo + 1
	if multiplier > game.MaxCombo {
		multiplier = game.MaxCombo
	}

	content := fmt.Sprintf(
		"@%s %s! You earn **%d %s**. Keep scoring to use your %dx multiplier!",
		ev.Player, congrats, ev.Points, ptsLabel, multiplier,
	)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("It was **%s**", ev.Title),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "**Leaderboard**", Value: strings.Join(ranking(ev.Scores), "\n")},
		},
	}
	_, err := u.session.ChannelMessageSendComplex(u.channelID, &discordgo.MessageSend{
		Content: content,
		Embed:   embed,
	})
	if err != nil {
		log().WithError(err).Error("unable to send correct guess message")
	}
}

func (u *ui) gameFinished(ev game.GameFinishedEvent) {
	description := "No scores!"
	if len(ev.Scores) > 0 {
		description = strings.Join(ranking(ev.Scores), "\n")
	}
	_, err := u.session.ChannelMessageSendComplex(u.channelID, &discordgo.MessageSend{
		Content: "The movie quiz is finished!",
		Embed:   &discordgo.MessageEmbed{Title: "Ranking", Description: description},
	})
	if err != nil {
		log().WithError(err).Error("unable to send final ranking")
	}
}

func (u *ui) sendEmbed(embed *discordgo.MessageEmbed) {
	if _, err := u.session.ChannelMessageSendEmbed(u.channelID, embed); err != nil {
		log().WithError(err).Error("unable to send embed")
	}
}

func (u *ui) react(ref any, emoji string) {
	msg, ok := ref.(messageRef)
	if !ok {
		return
	}
	if err := u.session.MessageReactionAdd(msg.ChannelID, msg.MessageID, emoji); err != nil {
		log().WithError(err).Error("unable to add reaction")
	}
}

// ranking formats the top scorers with their medals, best first.
func ranking(scores map[string]int) []string {
	type entry struct {
		name  string
		score int
	}
	entries := make([]entry, 0, len(scores))
	for name, score := range scores {
		entries = append(entries, entry{name, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].name < entries[j].name
	})

	medals := []string{"🥇", "🥈", "🥉"}
	lines := make([]string, 0, len(medals))
	for i, e := range entries {
		if i >= len(medals) {
			break
		}
		lines = append(lines, fmt.Sprintf("%s - %s - %d pts", medals[i], e.name, e.score))
	}
	return lines
}
