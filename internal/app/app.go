package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"healthnudge/internal/composer"
	"healthnudge/internal/config"
	"healthnudge/internal/directory"
	"healthnudge/internal/rules"
	"healthnudge/internal/services"
	"healthnudge/internal/store/rulestore"
)

// App wires the configured subsystems together. Construction either
// returns a fully usable App or cleans up whatever was already opened.
type App struct {
	Config *config.Config

	RuleSet     *rules.RuleSet
	RuleStore   *rulestore.Store // nil when running on the compiled-in rule set
	Directory   directory.Directory
	Composer    composer.Composer // nil when composer.provider is "none"
	RedisClient *redis.Client

	RecommendationService *services.RecommendationService
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initRuleSet(ctx); err != nil {
		return nil, err
	}
	if err := app.initDirectory(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initComposer(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initServices()

	log.Debug("application initialization complete")
	return app, nil
}

func (a *App) initRuleSet(ctx context.Context) error {
	if a.Config.Rules.DatabaseDSN == "" {
		a.RuleSet = rules.Default()
		return nil
	}

	store, err := rulestore.New(ctx, a.Config.Rules.DatabaseDSN)
	if err != nil {
		log.Warnf("rule store unavailable, using compiled-in rule set: %v", err)
		a.RuleSet = rules.Default()
		return nil
	}

	rs, err := store.LoadRuleSet(ctx)
	if err != nil {
		log.Warnf("failed to load rule set from store, using compiled-in rule set: %v", err)
		store.Close()
		a.RuleSet = rules.Default()
		return nil
	}

	a.RuleStore = store
	a.RuleSet = rs
	log.Infof("loaded rule set from store: %d categories, %d keyword rules", len(rs.Categories), len(rs.KeywordRules))
	return nil
}

func (a *App) initDirectory() error {
	cfg := a.Config
	places, err := directory.NewGooglePlaces(directory.GooglePlacesOptions{
		APIKey:     cfg.Directory.APIKey,
		BaseURL:    cfg.Directory.BaseURL,
		Timeout:    cfg.DirectoryTimeout(),
		MaxResults: cfg.Directory.MaxResults,
		MinRating:  cfg.Directory.MinRating,
	})
	if err != nil {
		return fmt.Errorf("init place directory: %w", err)
	}

	if !cfg.Directory.Cache.Enabled {
		a.Directory = places
		return nil
	}

	switch cfg.Directory.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.RedisClient = client
		a.Directory = directory.NewRedisCache(places, client, cfg.CacheTTL())
	default:
		a.Directory = directory.NewMemoryCache(places, cfg.Directory.Cache.Size, cfg.CacheTTL())
	}
	return nil
}

func (a *App) initComposer(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Composer.Provider {
	case "openai":
		c, err := composer.NewOpenAIComposer(cfg.Composer.OpenaiApiKey, cfg.Composer.Model, cfg.ComposerTimeout())
		if err != nil {
			return fmt.Errorf("init openai composer: %w", err)
		}
		a.Composer = c
	case "gemini":
		c, err := composer.NewGeminiComposer(ctx, cfg.Composer.GeminiApiKey, cfg.Composer.Model, cfg.ComposerTimeout())
		if err != nil {
			return fmt.Errorf("init gemini composer: %w", err)
		}
		a.Composer = c
	case "none", "":
		log.Debug("no composer provider configured, messages use the static templates")
	default:
		return fmt.Errorf("unknown or unsupported composer provider: %s", cfg.Composer.Provider)
	}
	return nil
}

func (a *App) initServices() {
	cfg := a.Config
	a.RecommendationService = services.NewRecommendationService(services.RecommendationServiceDeps{
		Directory:  a.Directory,
		Classifier: rules.NewClassifier(a.RuleSet),
		Ranker:     services.NewAlternativeRanker(cfg.Search.RadiusGraceFactor, cfg.Search.AlternativeLimit),
		Composer:   a.Composer,
		MaxVenues:  cfg.Directory.MaxResults,
	})
}

func (a *App) cleanupPartialInit() {
	if a.RuleStore != nil {
		a.RuleStore.Close()
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			log.Warnf("error closing redis client: %v", err)
		}
	}
	if c, ok := a.Composer.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			log.Warnf("error closing composer: %v", err)
		}
	}
}

// Close releases every connection the App holds.
func (a *App) Close() {
	a.cleanupPartialInit()
}
