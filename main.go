package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"secretlink/config"
	"secretlink/engine"
	"secretlink/models"
	"secretlink/remote"
	"secretlink/session"
	"secretlink/storage"
	"secretlink/store"
)

func main() {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		log.Fatalf("startup failed while loading config: %v", err)
	}

	fmt.Printf("User ID:         %s\n", cfg.UserID)
	fmt.Printf("Config File:     %s\n", cfgPath)
	dataDir := filepath.Dir(cfgPath)
	fmt.Printf("Data Directory:  %s\n", dataDir)

	var (
		messages store.MessageStore
		objects  store.ObjectStore
	)

	if cfg.ServerURL != "" {
		messages = remote.NewStore(cfg.ServerURL)
		objects, err = remote.NewObjects(cfg.ServerURL, cfg.Bucket)
		if err != nil {
			log.Fatalf("startup failed while preparing object store: %v", err)
		}
		fmt.Printf("Backend:         %s\n", cfg.ServerURL)
	} else {
		embedded, dbPath, err := storage.Open(dataDir)
		if err != nil {
			log.Fatalf("startup failed while opening database: %v", err)
		}
		defer func() {
			if err := embedded.Close(); err != nil {
				log.Printf("database close error: %v", err)
			}
		}()
		messages = embedded
		fmt.Printf("Backend:         embedded (%s)\n", dbPath)
	}

	sess := session.New(cfg.UserID)

	eng, err := engine.New(engine.Config{
		Store:    messages,
		Objects:  objects,
		Session:  sess,
		OnChange: logConversation(cfg.UserID),
	})
	if err != nil {
		log.Fatalf("startup failed while creating sync engine: %v", err)
	}
	if err := eng.Start(); err != nil {
		log.Fatalf("startup failed while starting sync engine: %v", err)
	}
	defer eng.Stop()

	if passphrase := os.Getenv("SECRETLINK_PASSPHRASE"); passphrase != "" {
		eng.Unlock(passphrase)
		fmt.Println("Session:         unlocked")
	} else {
		fmt.Println("Session:         locked (set SECRETLINK_PASSPHRASE to unlock)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Status:          running (press Ctrl+C to stop)")
	<-ctx.Done()
	fmt.Println("Status:          shutting down")
}

// logConversation reports view changes; it stands in for the UI
// layer, which is out of scope here.
func logConversation(selfID string) func([]models.Message) {
	lastCount := 0
	return func(view []models.Message) {
		if len(view) <= lastCount {
			return
		}
		for _, message := range view[lastCount:] {
			direction := "received"
			if message.SenderID == selfID {
				direction = "sent"
			}
			content := models.ParseContent(message.Content)
			switch content.Kind {
			case models.ContentImage:
				log.Printf("chat: %s image %s", direction, content.URL)
			default:
				log.Printf("chat: %s %q", direction, content.Text)
			}
		}
		lastCount = len(view)
	}
}
