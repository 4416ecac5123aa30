package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/boardflow/boardflow-api/internal/api"
	apiMiddleware "github.com/boardflow/boardflow-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwords,
		app.passwords,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	boardHandler := api.NewBoardHandler(
		app.boardService,
		app.columnService,
		app.notifications,
		app.logger,
	)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notifications, app.logger)
	reminderHandler := api.NewReminderHandler(app.reminderService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Profile
			r.Get("/users/me", authHandler.GetProfile)
			r.Put("/users/me", authHandler.UpdateProfile)

			// Boards and membership
			r.Post("/boards", boardHandler.CreateBoard)
			r.Get("/boards", boardHandler.ListBoards)
			r.Get("/boards/{id}", boardHandler.GetBoard)
			r.Delete("/boards/{id}", boardHandler.DeleteBoard)
			r.Post("/boards/{id}/members", boardHandler.AddMember)
			r.Get("/boards/{id}/events", boardHandler.ListEvents)

			// Columns
			r.Post("/boards/{id}/columns", boardHandler.CreateColumn)
			r.Get("/boards/{id}/columns", boardHandler.ListColumns)
			r.Delete("/columns/{id}", boardHandler.DeleteColumn)
			r.Post("/columns/{id}/rebalance", cardHandler.RebalanceColumn)

			// Cards
			r.Post("/columns/{id}/cards", cardHandler.CreateCard)
			r.Get("/columns/{id}/cards", cardHandler.ListCards)
			r.Get("/cards/{id}", cardHandler.GetCard)
			r.Put("/cards/{id}", cardHandler.UpdateCard)
			r.Delete("/cards/{id}", cardHandler.DeleteCard)
			r.Post("/cards/{id}/move", cardHandler.MoveCard)

			// Reminders
			r.Post("/cards/{id}/reminders", reminderHandler.CreateReminder)
			r.Get("/cards/{id}/reminders", reminderHandler.ListReminders)
			r.Put("/reminders/{id}", reminderHandler.UpdateReminder)
			r.Delete("/reminders/{id}", reminderHandler.DeleteReminder)

			// Notification deliveries and preferences
			r.Get("/events/{id}/deliveries", notificationHandler.ListDeliveries)
			r.Put("/preferences", notificationHandler.UpsertPreference)
			r.Get("/preferences", notificationHandler.ListPreferences)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
