package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-news-digest/internal/ai"
	"ai-news-digest/internal/config"
	"ai-news-digest/internal/digest"
	"ai-news-digest/internal/enrich"
	"ai-news-digest/internal/fetch"
	"ai-news-digest/internal/mail"
	"ai-news-digest/internal/sched"
	"ai-news-digest/internal/store"
	"ai-news-digest/internal/youtube"
)

// app bundles the wired pipeline components for one command invocation.
type app struct {
	cfg   config.Config
	store *store.Store
}

func newApp() (*app, error) {
	cfg := GetConfig()
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: st}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}

func (a *app) feedSources() []fetch.FeedSource {
	out := make([]fetch.FeedSource, 0, len(a.cfg.Feeds))
	for _, f := range a.cfg.Feeds {
		out = append(out, fetch.FeedSource{Name: f.Name, URL: f.URL})
	}
	return out
}

func (a *app) channelSources() []fetch.ChannelSource {
	out := make([]fetch.ChannelSource, 0, len(a.cfg.Channels))
	for _, c := range a.cfg.Channels {
		out = append(out, fetch.ChannelSource{Name: c.Name, ChannelID: c.ChannelID})
	}
	return out
}

func (a *app) scrapeSources() []fetch.ScrapeSource {
	out := make([]fetch.ScrapeSource, 0, len(a.cfg.ScrapeURLs))
	for _, s := range a.cfg.ScrapeURLs {
		out = append(out, fetch.ScrapeSource{Name: s.Name, URL: s.URL})
	}
	return out
}

func (a *app) enricher() (*enrich.Enricher, error) {
	if a.cfg.OpenAI.APIKey == "" {
		return nil, errors.New("openai.api_key is not configured")
	}
	provider := ai.NewOpenAI(ai.Config{
		APIKey:    a.cfg.OpenAI.APIKey,
		Model:     a.cfg.OpenAI.Model,
		BaseURL:   a.cfg.OpenAI.BaseURL,
		MaxTokens: a.cfg.OpenAI.MaxTokens,
	})
	return enrich.New(a.store, provider, a.cfg.OpenAI.MaxTokens), nil
}

func (a *app) assembler() *digest.Assembler {
	return digest.NewAssembler(a.store, a.cfg.Digest.WindowHours, a.cfg.Digest.EventsWindowDays)
}

func (a *app) sender() (*mail.Sender, error) {
	if a.cfg.Email.APIKey == "" {
		return nil, errors.New("email.api_key is not configured")
	}
	if a.cfg.Email.To == "" {
		return nil, errors.New("email.to is not configured")
	}
	client := mail.NewClient(a.cfg.Email.BaseURL, a.cfg.Email.APIKey, a.cfg.Email.From, 15*time.Second)
	return mail.NewSender(a.store, client, a.cfg.Email.To, a.cfg.Email.SubjectPrefix), nil
}

// orchestrator registers the five pipeline jobs. When scheduled is false the
// jobs are manual-only, for one-shot pipeline runs.
func (a *app) orchestrator(scheduled bool) (*sched.Orchestrator, error) {
	feeds := fetch.NewFeedFetcher(a.store)
	scraper := fetch.NewScrapeFetcher(a.store)
	yt := youtube.NewClient(a.cfg.YouTube.BaseURL, a.cfg.YouTube.APIKey)
	channels := fetch.NewChannelFetcher(a.store, yt, a.cfg.YouTube.MaxResults)

	spec := func(s string) string {
		if scheduled {
			return s
		}
		return ""
	}

	o := sched.New()
	err := o.Register(sched.JobCollectFeeds, spec(a.cfg.Schedule.Feeds), func(ctx context.Context) error {
		feeds.CollectAll(ctx, a.feedSources())
		scraper.CollectAll(ctx, a.scrapeSources())
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = o.Register(sched.JobCollectChannels, spec(a.cfg.Schedule.Channels), func(ctx context.Context) error {
		channels.CollectAll(ctx, a.channelSources())
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = o.Register(sched.JobEnrich, spec(a.cfg.Schedule.Enrich), func(ctx context.Context) error {
		e, err := a.enricher()
		if err != nil {
			return err
		}
		_, err = e.ProcessUnprocessed(ctx, a.cfg.Digest.EnrichBatchLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = o.Register(sched.JobAssemble, spec(a.cfg.Schedule.Assemble), func(ctx context.Context) error {
		_, err := a.assembler().CreateAndSave(ctx, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	err = o.Register(sched.JobDeliver, spec(a.cfg.Schedule.Deliver), func(ctx context.Context) error {
		s, err := a.sender()
		if err != nil {
			return err
		}
		if err := s.SendLatest(ctx); err != nil && !errors.Is(err, mail.ErrNoUnsent) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func jobNames() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s",
		sched.JobCollectFeeds, sched.JobCollectChannels, sched.JobEnrich,
		sched.JobAssemble, sched.JobDeliver)
}
