package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"profile-system/pkg/config"
)

// Запуск: go run ./cmd/migrate -command up
func main() {
	command := flag.String("command", "up", "команда goose: up, down, status, version")
	dir := flag.String("dir", "migrations", "директория с миграциями")
	flag.Parse()

	cfg := config.New()

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось открыть соединение с БД: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("не удалось пинговать БД: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("не удалось выбрать диалект: %v", err)
	}

	if err := goose.Run(*command, db, *dir, flag.Args()...); err != nil {
		log.Fatalf("миграция завершилась с ошибкой: %v", err)
	}

	log.Printf("✅ goose %s выполнен", *command)
}
