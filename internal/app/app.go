package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskbot/core/bootstrap"
	coretelegram "taskbot/core/telegram"
	"taskbot/core/telegram/commands"
	"taskbot/core/telegram/router"
	"taskbot/core/telegram/state"
	"taskbot/core/telegram/ui"
	"taskbot/internal/browser"
	"taskbot/internal/calendar"
	"taskbot/internal/tasks"
	"taskbot/internal/wizard"
)

// App holds the assembled bot components.
type App struct {
	cfg *Config
	db  *sqlx.DB

	repo    tasks.Repository
	wizard  *wizard.Wizard
	browser *browser.Browser
}

var _ ui.FallbackProvider = (*App)(nil)

// Bootstrap initializes logging, the database and the domain components.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	repo := tasks.NewPostgresRepository(res.DB)
	sessions := state.NewMemoryManager[tasks.Draft]()

	return &App{
		cfg:     cfg,
		db:      res.DB,
		repo:    repo,
		wizard:  wizard.New(sessions, repo),
		browser: browser.New(repo),
	}, nil
}

// TelegramRunOptions wires commands, callbacks and routes for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Запустить бота",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     a.handleMenu,
		Description: "Главное меню",
		Aliases:     []string{"Меню"},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp(reg),
		Description: "Справка по командам",
	})
	reg.RegisterCommand("/add", commands.Command{
		Handler:     a.wizard.Start,
		Description: "Добавить задачу",
		Aliases:     []string{"Добавить задачу"},
	})
	reg.RegisterCommand("/tasks", commands.Command{
		Handler:     a.browser.ListAll,
		Description: "Все задачи",
		Aliases:     []string{"Все задачи"},
	})
	reg.RegisterCommand("/executors", commands.Command{
		Handler:     a.browser.FilterMenu,
		Description: "Задачи по исполнителю",
		Aliases:     []string{"Задачи по исполнителю"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Статистика по задачам",
		AdminOnly:   true,
	})

	if err := reg.RegisterCallback(calendar.UniqueDate, a.wizard.HandleDate); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(calendar.UniquePrev, a.wizard.HandleNav); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(calendar.UniqueNext, a.wizard.HandleNav); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(calendar.UniqueIgnore, a.wizard.HandleIgnore); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(browser.UniqueFilter, a.browser.HandleFilter); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(browser.UniqueStatus, a.browser.HandleStatus); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(browser.UniqueDelete, a.browser.HandleDelete); err != nil {
		return coretelegram.RunOptions{}, err
	}

	reg.SetTextFallback(a.UnknownText())
	reg.SetCallbackNotFound(a.UnknownCallback())

	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.wizard, reg, router.TextOptions{
		UnknownText:  a.UnknownText(),
		UnknownPhoto: a.UnknownPhoto(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
