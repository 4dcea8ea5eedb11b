package main

import (
	"log"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"symbol_backend/internal/app/di"
	"symbol_backend/internal/app/router"
	"symbol_backend/internal/feature/brokers"
	brokerhandler "symbol_backend/internal/feature/brokers/transport/handler"
	ingestadapters "symbol_backend/internal/feature/ingestion/adapters"
	ingesthandler "symbol_backend/internal/feature/ingestion/transport/handler"
	ingestusecase "symbol_backend/internal/feature/ingestion/usecase"
	orderhandler "symbol_backend/internal/feature/orders/transport/handler"
	orderusecase "symbol_backend/internal/feature/orders/usecase"
	symbolhandler "symbol_backend/internal/feature/symbols/transport/handler"
	symbolusecase "symbol_backend/internal/feature/symbols/usecase"
	"symbol_backend/internal/feature/symbols/validation"
	infradb "symbol_backend/internal/platform/db"
	"symbol_backend/internal/platform/http/handler"
	"symbol_backend/internal/platform/messaging"
	infraredis "symbol_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache tier.")
		rdb = nil
	} else {
		rdb = tmp
		if rdb != nil {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository（2層キャッシュ付き）
	store := di.NewSymbolStore(db, rdb)

	// Kafkaイベント配信（KAFKA_BROKERS未設定ならnil）
	var publisher symbolusecase.EventPublisher
	if p := messaging.NewSymbolEventPublisher(); p != nil {
		publisher = p
		defer func() {
			if err := p.Close(); err != nil {
				log.Println("[ERROR] Failed to close Kafka publisher:", err)
			}
		}()
	}

	// Usecase
	engine := validation.NewEngine()
	symbolUC := symbolusecase.NewSymbolUsecase(store, engine, publisher, nil)
	orderUC := orderusecase.NewOrderValidatorUsecase(store)
	ingestUC := ingestusecase.NewIngestUsecase(symbolUC, engine)

	// Handler
	symbolH := symbolhandler.NewSymbolHandler(symbolUC)
	rulesH := symbolhandler.NewRulesHandler(engine)
	orderH := orderhandler.NewOrderHandler(orderUC)
	brokerH := brokerhandler.NewBrokerHandler(brokers.Default(), symbolUC)
	ingestH := ingesthandler.NewIngestHandler(ingestUC, ingestadapters.NewFeedCSV())
	opsH := handler.NewOpsHandler(store)

	// ルータ生成
	router := router.NewRouter(symbolH, orderH, brokerH, ingestH, rulesH, opsH)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
