package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medviet/clinic-booking/internal/auth"
	"github.com/medviet/clinic-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedAdmin(context.Background(), pool); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedDoctors(context.Background(), pool, 3); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatientUsers(context.Background(), pool, 20); err != nil {
		log.Fatalf("seed patient users: %v", err)
	}

	log.Println("seed complete")
}

// seedAdmin creates the default admin login if it does not exist yet.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, role, enabled, created_at, updated_at)
		VALUES ($1, 'admin', $2, 'System Administrator', 'ADMIN', TRUE, now(), now())
		ON CONFLICT (username) DO NOTHING
	`, uuid.New(), hash)
	if err != nil {
		return err
	}

	log.Println("admin user ensured")
	return nil
}

// seedDoctors inserts perSpecialty doctors for each clinic department, so
// every tier of the doctor selection fallback has candidates.
func seedDoctors(ctx context.Context, pool *pgxpool.Pool, perSpecialty int) error {
	specialties := []string{
		"Tim mạch",
		"Cơ xương khớp",
		"Tai mũi họng",
		"Da liễu",
		"Răng hàm mặt",
		"Đa khoa",
	}

	log.Printf("seeding %d doctors across %d specialties", perSpecialty*len(specialties), len(specialties))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, spec := range specialties {
		for i := 0; i < perSpecialty; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO doctors (id, user_id, full_name, specialty, created_at, updated_at)
				VALUES ($1, NULL, $2, $3, now(), now())
			`, uuid.New(), "BS. "+gofakeit.Name(), spec)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

// seedPatientUsers creates login accounts with the PATIENT role. Their
// patient profiles are created lazily on first booking.
func seedPatientUsers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patient users", count)

	hash, err := auth.HashPassword("patient123")
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, full_name, role, enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'PATIENT', TRUE, now(), now())
			ON CONFLICT (username) DO NOTHING
		`, uuid.New(), gofakeit.Username(), hash, gofakeit.Name())
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("patient users seeded")
	return nil
}
