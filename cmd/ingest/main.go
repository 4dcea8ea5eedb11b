package main

import (
	"context"
	"log"
	"os"
	"time"

	"symbol_backend/internal/app/di"
	ingestadapters "symbol_backend/internal/feature/ingestion/adapters"
	ingestusecase "symbol_backend/internal/feature/ingestion/usecase"
	"symbol_backend/internal/feature/symbols/domain/entity"
	symbolusecase "symbol_backend/internal/feature/symbols/usecase"
	"symbol_backend/internal/feature/symbols/validation"
	infradb "symbol_backend/internal/platform/db"
	"symbol_backend/internal/platform/messaging"
	"symbol_backend/internal/shared/ratelimiter"
)

func main() {
	path := feedPath()
	if path == "" {
		log.Fatal("usage: ingest <feed.csv> (or set FEED_PATH)")
	}

	db := infradb.OpenDB()
	store := di.NewSymbolStore(db, nil)

	var publisher symbolusecase.EventPublisher
	if p := messaging.NewSymbolEventPublisher(); p != nil {
		publisher = p
		defer func() {
			if err := p.Close(); err != nil {
				log.Println("[ERROR] Failed to close Kafka publisher:", err)
			}
		}()
	}

	// バッチはチャンク書き込みのペースを制限する（毎分120チャンクまで）
	limiter := ratelimiter.NewRateLimiter(120, time.Minute)

	engine := validation.NewEngine()
	symbolUC := symbolusecase.NewSymbolUsecase(store, engine, publisher, limiter)
	uc := ingestusecase.NewIngestUsecase(symbolUC, engine)

	rows, err := ingestadapters.NewFeedCSV().ReadFile(path)
	if err != nil {
		log.Fatal("failed to read feed:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := uc.Process(ctx, rows, entity.ProcessDailyUpdate, "daily-feed")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("ingest ok: processed=%d new=%d updated=%d rejected=%d skipped=%d",
		result.TotalProcessed, result.NewSymbols, result.UpdatedSymbols, result.RejectedRows, result.SkippedRows)
}

func feedPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return os.Getenv("FEED_PATH")
}
