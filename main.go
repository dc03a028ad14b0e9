package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/decker502/reelspin/pkg/app"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
)

// envOr 返回环境变量的值，未设置时返回 fallback
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env 不存在时忽略，环境变量只作为参数默认值
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Main] Warning: failed to load .env: %v", err)
	}

	verboseDefault, _ := strconv.ParseBool(envOr("REELSPIN_VERBOSE", "false"))

	configPath := flag.String("config", envOr("REELSPIN_CONFIG", "data/spinner.yaml"), "转盘配置文件路径")
	roomID := flag.String("room", envOr("REELSPIN_ROOM", ""), "房间号（覆盖配置文件）")
	verbose := flag.Bool("verbose", verboseDefault, "输出详细日志")
	flag.Parse()

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		RoomID:     *roomID,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("Reel Spin")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// Start the game loop
	// This will call Update() and Draw() repeatedly until the window is closed
	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
