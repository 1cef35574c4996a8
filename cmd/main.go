package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/config"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customerlink"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/deficiency"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/inspection"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/job"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/lead"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/notifier"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payment"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payments"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/qr"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/quote"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/sequence"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/user"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := zl.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("config load failed", "err", err)
	}

	auth.SetSecret([]byte(cfg.JWTSecret))
	auth.CookieName = cfg.SessionCookie

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		log.Fatalw("database connection failed", "err", err)
	}

	if err := db.AutoMigrate(
		&user.Profile{},
		&user.Team{},
		&lead.Lead{},
		&customer.Customer{},
		&customerlink.CustomerLink{},
		&quote.Quote{},
		&job.Job{},
		&job.Assignment{},
		&job.Note{},
		&job.Event{},
		&job.Checklist{},
		&job.Photo{},
		&invoice.Invoice{},
		&payment.Payment{},
		&inspection.Inspection{},
		&deficiency.Deficiency{},
		&qr.Code{},
		&qr.Scan{},
		&sequence.Sequence{},
	); err != nil {
		log.Fatalw("automigrate failed", "err", err)
	}

	if err := user.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		log.Fatalw("admin seed failed", "err", err)
	}

	mail := notifier.New(cfg.EmailAPIBase, cfg.EmailAPIKey, cfg.EmailFrom, log)
	estimator := inspection.NewEstimator(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel)

	gateway, err := payments.NewStripeGateway(
		cfg.StripeSecretKey,
		cfg.StripeWebhookSecret,
		cfg.PublicBaseURL+"/pay/success?session_id={CHECKOUT_SESSION_ID}",
		cfg.PublicBaseURL+"/pay/cancelled",
		log,
	)
	if err != nil {
		log.Warnw("stripe gateway not configured", "err", err)
	}

	// Handlers
	userHandler := user.NewHandler(db, mail, log)
	leadHandler := lead.NewHandler(db, mail, log)
	customerHandler := customer.NewHandler(db)
	linkHandler := customerlink.NewHandler(db)
	quoteHandler := quote.NewHandler(db, cfg.DefaultTaxRate, log)
	jobHandler := job.NewHandler(db, cfg.DefaultTaxRate, log)
	invoiceHandler := invoice.NewHandler(db, gateway, mail, cfg.DefaultTaxRate, log)
	paymentHandler := payment.NewHandler(db, gateway, log)
	webhookHandler := webhook.NewHandler(db, gateway, log)
	inspectionHandler := inspection.NewHandler(db, estimator, log)
	deficiencyHandler := deficiency.NewHandler(db, cfg.DefaultTaxRate, log)
	qrHandler := qr.NewHandler(db, log)

	adminOnly := auth.RequireRoles(auth.RoleAdmin)
	office := auth.RequireRoles(auth.RoleAdmin, auth.RoleManager)
	staff := auth.RequireRoles(auth.RoleAdmin, auth.RoleManager, auth.RoleTechnician, auth.RoleInspector)

	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/api/leads", leadHandler.Create).Methods("POST")
	r.HandleFunc("/api/auth/login", userHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/accept", userHandler.AcceptInvite).Methods("POST")
	r.HandleFunc("/api/portal/{token}", linkHandler.Resolve).Methods("GET")
	r.HandleFunc("/api/qr/{slug}", qrHandler.Redirect).Methods("GET")
	r.HandleFunc("/api/payments/verify", paymentHandler.Verify).Methods("GET")
	r.HandleFunc("/api/webhooks/stripe", webhookHandler.Stripe).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", webhookHandler.Stripe).Methods("POST")

	// Authenticated routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware)

	api.Handle("/auth/me", http.HandlerFunc(userHandler.Me)).Methods("GET")
	api.Handle("/auth/logout", http.HandlerFunc(userHandler.Logout)).Methods("POST")
	api.Handle("/auth/invite", adminOnly(http.HandlerFunc(userHandler.Invite))).Methods("POST")
	api.Handle("/users", adminOnly(http.HandlerFunc(userHandler.ListUsers))).Methods("GET")
	api.Handle("/users/{id}", adminOnly(http.HandlerFunc(userHandler.UpdateUser))).Methods("PATCH")
	api.Handle("/teams", adminOnly(http.HandlerFunc(userHandler.CreateTeam))).Methods("POST")
	api.Handle("/teams", adminOnly(http.HandlerFunc(userHandler.ListTeams))).Methods("GET")
	api.Handle("/teams/{id}", adminOnly(http.HandlerFunc(userHandler.GetTeam))).Methods("GET")
	api.Handle("/teams/{id}", adminOnly(http.HandlerFunc(userHandler.DeleteTeam))).Methods("DELETE")

	api.Handle("/leads", office(http.HandlerFunc(leadHandler.List))).Methods("GET")
	api.Handle("/leads/{id}", office(http.HandlerFunc(leadHandler.Get))).Methods("GET")
	api.Handle("/leads/{id}", office(http.HandlerFunc(leadHandler.Update))).Methods("PUT")
	api.Handle("/leads/{id}", adminOnly(http.HandlerFunc(leadHandler.Delete))).Methods("DELETE")
	api.Handle("/leads/{id}/grant-access", office(http.HandlerFunc(leadHandler.GrantAccess))).Methods("POST")

	api.Handle("/customers", office(http.HandlerFunc(customerHandler.Create))).Methods("POST")
	api.Handle("/customers", office(http.HandlerFunc(customerHandler.List))).Methods("GET")
	api.Handle("/customers/{id}", office(http.HandlerFunc(customerHandler.Get))).Methods("GET")
	api.Handle("/customers/{id}", office(http.HandlerFunc(customerHandler.Update))).Methods("PUT")
	api.Handle("/customers/{id}", adminOnly(http.HandlerFunc(customerHandler.Delete))).Methods("DELETE")

	api.Handle("/quotes", office(http.HandlerFunc(quoteHandler.Create))).Methods("POST")
	api.Handle("/quotes", office(http.HandlerFunc(quoteHandler.List))).Methods("GET")
	api.Handle("/quotes/{id}", office(http.HandlerFunc(quoteHandler.Get))).Methods("GET")
	api.Handle("/quotes/{id}", office(http.HandlerFunc(quoteHandler.Update))).Methods("PUT")
	api.Handle("/quotes/{id}", office(http.HandlerFunc(quoteHandler.Duplicate))).Methods("POST")
	api.Handle("/quotes/{id}", adminOnly(http.HandlerFunc(quoteHandler.Delete))).Methods("DELETE")
	api.Handle("/quotes/{id}/convert-to-job", office(http.HandlerFunc(quoteHandler.ConvertToJob))).Methods("POST")

	api.Handle("/jobs", office(http.HandlerFunc(jobHandler.Create))).Methods("POST")
	api.Handle("/jobs", staff(http.HandlerFunc(jobHandler.List))).Methods("GET")
	api.Handle("/jobs/{id}", staff(http.HandlerFunc(jobHandler.Get))).Methods("GET")
	api.Handle("/jobs/{id}", staff(http.HandlerFunc(jobHandler.Patch))).Methods("PATCH")
	api.Handle("/jobs/{id}", adminOnly(http.HandlerFunc(jobHandler.Delete))).Methods("DELETE")
	api.Handle("/jobs/{id}/assignments", office(http.HandlerFunc(jobHandler.AddAssignment))).Methods("POST")
	api.Handle("/jobs/{id}/assignments/{aid}/ack", staff(http.HandlerFunc(jobHandler.AcknowledgeAssignment))).Methods("POST")
	api.Handle("/jobs/{id}/notes", staff(http.HandlerFunc(jobHandler.AddNote))).Methods("POST")
	api.Handle("/jobs/{id}/notes", staff(http.HandlerFunc(jobHandler.ListNotes))).Methods("GET")
	api.Handle("/jobs/{id}/events", staff(http.HandlerFunc(jobHandler.ListEvents))).Methods("GET")
	api.Handle("/jobs/{id}/checklists", staff(http.HandlerFunc(jobHandler.AddChecklist))).Methods("POST")
	api.Handle("/jobs/{id}/checklists/{cid}", staff(http.HandlerFunc(jobHandler.UpdateChecklist))).Methods("PUT")
	api.Handle("/jobs/{id}/photos", staff(http.HandlerFunc(jobHandler.AddPhoto))).Methods("POST")
	api.Handle("/jobs/{id}/create-invoice", office(http.HandlerFunc(jobHandler.CreateInvoice))).Methods("POST")

	api.Handle("/invoices", office(http.HandlerFunc(invoiceHandler.Create))).Methods("POST")
	api.Handle("/invoices", office(http.HandlerFunc(invoiceHandler.List))).Methods("GET")
	api.Handle("/invoices/{id}", office(http.HandlerFunc(invoiceHandler.Get))).Methods("GET")
	api.Handle("/invoices/{id}", office(http.HandlerFunc(invoiceHandler.Patch))).Methods("PATCH")
	api.Handle("/invoices/{id}", adminOnly(http.HandlerFunc(invoiceHandler.Delete))).Methods("DELETE")
	api.Handle("/invoices/{id}/send", office(http.HandlerFunc(invoiceHandler.Send))).Methods("POST")

	api.Handle("/payments", office(http.HandlerFunc(paymentHandler.Create))).Methods("POST")
	api.Handle("/payments", office(http.HandlerFunc(paymentHandler.List))).Methods("GET")

	api.Handle("/inspections", staff(http.HandlerFunc(inspectionHandler.Create))).Methods("POST")
	api.Handle("/inspections", staff(http.HandlerFunc(inspectionHandler.List))).Methods("GET")
	api.Handle("/inspections/{id}", staff(http.HandlerFunc(inspectionHandler.Get))).Methods("GET")
	api.Handle("/inspections/{id}", staff(http.HandlerFunc(inspectionHandler.Update))).Methods("PUT")
	api.Handle("/inspections/{id}/estimate-devices", staff(http.HandlerFunc(inspectionHandler.EstimateDevices))).Methods("POST")

	api.Handle("/deficiencies", staff(http.HandlerFunc(deficiencyHandler.Create))).Methods("POST")
	api.Handle("/deficiencies", staff(http.HandlerFunc(deficiencyHandler.List))).Methods("GET")
	api.Handle("/deficiencies/generate-quote", office(http.HandlerFunc(deficiencyHandler.GenerateQuote))).Methods("POST")
	api.Handle("/deficiencies/{id}", staff(http.HandlerFunc(deficiencyHandler.Get))).Methods("GET")

	api.Handle("/qr", office(http.HandlerFunc(qrHandler.Create))).Methods("POST")
	api.Handle("/qr", office(http.HandlerFunc(qrHandler.List))).Methods("GET")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.PublicBaseURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	log.Infow("server listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
