package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CodingWeeb-Gaurav/backend/agent"
	"github.com/CodingWeeb-Gaurav/backend/lookup"
	"github.com/CodingWeeb-Gaurav/backend/session"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}

	cache, err := buildCache(config)
	if err != nil {
		return err
	}
	store := session.NewStore(cache, session.DefaultRetention)
	sweeper, err := session.NewSweeper(store, session.DefaultSweepSchedule)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	inventory := lookup.NewInventoryClient(config.APIBaseURL)
	account := lookup.NewAccountClient(config.APIBaseURL)
	orders := lookup.NewOrderClient(config.APIBaseURL)

	details, err := agent.NewRequestDetails(cm)
	if err != nil {
		return err
	}
	router := agent.NewRouter(store, session.NewChatLog(cache),
		agent.NewProductSelection(cm, inventory),
		details,
		agent.NewFinalize(cm, account, orders),
	)

	sessionID := uuid.NewString()
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Welcome! Tell me what you're looking for (e.g. \"I need 50 KG of sulfuric acid\"):")
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Exiting.")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		reply := router.HandleTurn(ctx, sessionID, config.UserAuth, input)
		fmt.Printf("\nAssistant: %v\n======\n", reply)
	}
	return nil
}

func buildCache(config *Config) (session.Cache, error) {
	switch config.Cache {
	case "", "memory":
		return session.NewMemoryCache(), nil
	case "sqlite":
		path := config.SQLitePath
		if path == "" {
			path = "sessions.db"
		}
		return session.NewSQLiteCache(path)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		return session.NewRedisCache(client), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Cache)
	}
}
