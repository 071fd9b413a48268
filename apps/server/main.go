package main

import (
	"flag"
	"log"
	"net/http"

	"trio-lite/apps/server/internal/auth"
	"trio-lite/apps/server/internal/gateway"
	"trio-lite/apps/server/internal/ledger"
	"trio-lite/apps/server/internal/room"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the server config file")
	flag.Parse()

	cfg, err := loadServerConfig(*configPath, flagWasSet("config"))
	if err != nil {
		log.Fatalf("[Server] Failed to load config: %v", err)
	}

	authService, authMode, err := auth.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init auth manager: %v", err)
	}
	defer authService.Close()
	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv(authMode)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	gw := gateway.New(authService)
	lby := room.NewLobby(cfg.roomConfig(), gw.BroadcastToAccount, ledgerService)
	gw.SetLobby(lby)
	defer lby.StopAll()

	authHTTP := auth.NewHTTPHandler(authService)
	matchHTTP := ledger.NewHTTPHandler(authService, ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(mux)
	matchHTTP.RegisterRoutes(mux)

	log.Printf("[Server] Auth mode: %s", authMode)
	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] Room: %d seats, %d computer agents", cfg.Room.HumanSeats, cfg.Room.ComputerAgents)
	log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
