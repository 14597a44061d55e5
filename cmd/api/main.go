package main

import (
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"studyplan-backend/internal/auth"
	"studyplan-backend/internal/classes"
	"studyplan-backend/internal/config"
	"studyplan-backend/internal/db"
	"studyplan-backend/internal/planner"
	"studyplan-backend/internal/schedule"
	"studyplan-backend/internal/tasks"
	"studyplan-backend/internal/tracing"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		log.Fatal("❌ Failed to ensure schema:", err)
	}

	log.Println("✅ Connected to PostgreSQL!")

	if cfg.TraceEnabled {
		if err := tracing.Init("studyplan-backend", "dev"); err != nil {
			log.Println("⚠️ tracing init failed:", err)
		} else {
			log.Println("✅ Tracing enabled (stdout exporter)")
		}
	}

	policy := schedule.DefaultPolicy()
	if cfg.SchedulePolicy != "" {
		policy, err = schedule.LoadPolicy(cfg.SchedulePolicy)
		if err != nil {
			log.Fatal("❌ Failed to load schedule policy:", err)
		}
		log.Println("✅ Schedule policy loaded from", cfg.SchedulePolicy)
	}
	scheduler := schedule.New(schedule.WithPolicy(policy))

	secret := []byte(cfg.JWTSecret)
	mw := auth.New(secret)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", auth.RegisterHandler(database, secret))
	mux.HandleFunc("/auth/login", auth.LoginHandler(database, secret))
	mux.HandleFunc("/auth/logout", auth.LogoutHandler())
	mux.HandleFunc("/auth/me", mw.Wrap(auth.MeHandler(database)))
	mux.HandleFunc("/account", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			auth.DeleteAccountHandler(database)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ----- CLASSES API -----
	mux.HandleFunc("/classes", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			classes.ListClassesHandler(database)(w, r)
		case http.MethodPost:
			classes.CreateClassHandler(database)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/classes/", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			classes.UpdateClassHandler(database)(w, r)
		case http.MethodDelete:
			classes.DeleteClassHandler(database)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			tasks.GetTasksHandler(database)(w, r)
		case http.MethodPost:
			tasks.CreateTaskHandler(database)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/tasks/status", mw.Wrap(tasks.SetTaskStatusHandler(database)))
	mux.HandleFunc("/tasks/", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			tasks.UpdateTaskHandler(database)(w, r)
		case http.MethodDelete:
			tasks.DeleteTaskHandler(database)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ----- SCHEDULE API -----
	mux.HandleFunc("/schedule", mw.Wrap(planner.GetScheduleHandler(database, scheduler)))
	mux.HandleFunc("/schedule/day", mw.Wrap(planner.GetDayHandler(database, scheduler)))
	mux.HandleFunc("/schedule/events", mw.Wrap(planner.GetEventsHandler(database, scheduler)))
	mux.HandleFunc("/schedule/complete", mw.Wrap(planner.CompleteSessionHandler(database, scheduler)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("❌ Failed to listen:", err)
	}
	ln = netutil.LimitListener(ln, cfg.MaxConns)

	log.Println("🚀 API server is running on", addr)
	log.Fatal(http.Serve(ln, handler))
}
