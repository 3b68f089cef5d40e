package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"zhibo/internal/character"
	"zhibo/internal/config"
	"zhibo/internal/streaming"
	"zhibo/internal/voice"
	log2 "zhibo/pkg/log"
	"zhibo/pkg/util"
)

func main() {
	mode := flag.String("mode", "interactive", "运行模式: demo 或 interactive")
	personality := flag.String("personality", "", "初始人设，默认取配置文件")
	flag.Parse()

	cfg := config.NewConfig()
	if cfg == nil {
		panic("failed to load config")
	}

	logger := log2.NewLogger(&log2.Option{
		Mode:        cfg.Server.Mode,
		ServiceName: "zhibo",
		EncodeType:  log2.EncodeTypeConsole,
	})

	app, err := newApp(cfg, logger)
	if err != nil {
		panic(err)
	}

	if *personality == "" {
		*personality = cfg.Character.DefaultPersonality
	}
	if err = app.composer.Personality().Select(*personality); err != nil {
		logger.Warnf("%v", err)
	}

	switch *mode {
	case "demo":
		app.runDemo(context.Background())
	case "interactive":
		app.runInteractive(context.Background())
	default:
		fmt.Printf("未知模式: %s\n", *mode)
		os.Exit(1)
	}
}

type app struct {
	cfg       *config.Config
	log       *log2.Logger
	composer  *character.Composer
	voice     *voice.Manager
	player    *streaming.Player
	collector *streaming.Collector
}

func newApp(cfg *config.Config, logger *log2.Logger) (*app, error) {
	voiceManager, err := voice.NewManager(cfg, logger)
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	pm := character.NewPersonalityManager(logger)
	am := character.NewAsmrManager(rnd, logger)

	return &app{
		cfg:       cfg,
		log:       logger,
		composer:  character.NewComposer(pm, am, rnd, logger),
		voice:     voiceManager,
		player:    streaming.NewPlayer(cfg.Audio.SampleRate, logger),
		collector: streaming.NewCollector(),
	}, nil
}

// speak 组装、合成并播放一段文本
func (a *app) speak(ctx context.Context, text, scene string) {
	u, params := a.composer.Compose(text, scene)
	fmt.Printf("【主播】: %s\n", u.Text)

	audio, engine, err := a.voice.Synthesize(ctx, u.Text, params, u.Language)
	if err != nil {
		a.log.Errorf("合成失败: %v", err)
		return
	}
	a.log.Debugf("引擎 %s 合成 %d 字节", engine, len(audio))
	if err = a.player.Play(audio); err != nil {
		a.log.Errorf("播放失败: %v", err)
	}
}

var demoTexts = []string{
	"大家好！我是你们的AI虚拟主播！",
	"今天天气真不错，大家心情怎么样？",
	"谢谢大家的支持，我会继续努力的！",
	"Hello everyone! I'm your AI virtual host!",
	"What would you like to talk about today?",
}

// runDemo 依次演示人设切换、ASMR模式和文本加工
func (a *app) runDemo(ctx context.Context) {
	fmt.Println("=== 人设演示 ===")
	for _, id := range []string{"cute_girl", "asmr_girl", "energetic_girl", "shy_girl"} {
		if err := a.composer.Personality().Select(id); err != nil {
			a.log.Warnf("%v", err)
			continue
		}
		p := a.composer.Personality().Current()
		fmt.Printf("\n👤 %s(%s): %s\n", p.ID, p.DisplayName, p.Description)
		a.speak(ctx, "", "greeting")
		time.Sleep(time.Second)
	}

	fmt.Println("\n=== ASMR模式演示 ===")
	for _, id := range []string{"gentle_whisper", "personal_attention", "rain_nature", "tapping_sounds"} {
		if err := a.composer.Asmr().Select(id); err != nil {
			a.log.Warnf("%v", err)
			continue
		}
		mode := a.composer.Asmr().Current()
		fmt.Printf("\n🎵 %s(%s): %s\n", mode.ID, mode.DisplayName, mode.Description)
		a.speak(ctx, "", "")
		time.Sleep(time.Second)
	}
	a.composer.Asmr().Disable()

	fmt.Println("\n=== 文本加工演示 ===")
	_ = a.composer.Personality().Select(a.cfg.Character.DefaultPersonality)
	for _, text := range demoTexts {
		fmt.Printf("\n原文: %s\n", text)
		a.speak(ctx, text, "")
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\n" + a.statsText())
}

func (a *app) runInteractive(ctx context.Context) {
	fmt.Println("输入消息与主播互动，命令:")
	fmt.Println("  !personality <名称>  切换人设")
	fmt.Println("  !asmr <模式>         进入ASMR模式")
	fmt.Println("  !asmr off            退出ASMR模式")
	fmt.Println("  !stats               查看运行统计")
	fmt.Println("  !help                帮助")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n📝 > ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if a.isExit(input) {
			fmt.Println("下次再见！")
			return
		}
		if strings.HasPrefix(input, "!") {
			a.handleCommand(input)
			continue
		}

		a.collector.IncMessages()
		a.speak(ctx, input, "")
	}
}

func (a *app) isExit(text string) bool {
	text = util.RemoveAllPunctuation(text)
	for _, cmd := range a.cfg.CMDExit {
		if text == cmd {
			return true
		}
	}
	return false
}

func (a *app) handleCommand(input string) {
	parts := strings.Fields(strings.TrimPrefix(input, "!"))
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "personality":
		if len(parts) < 2 {
			fmt.Printf("可用人设: %s\n", strings.Join(a.composer.Personality().List(), ", "))
			return
		}
		if err := a.composer.Personality().Select(parts[1]); err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
		fmt.Printf("✅ 已切换人设: %s\n", parts[1])
	case "asmr":
		if len(parts) < 2 {
			fmt.Printf("可用ASMR模式: %s\n", strings.Join(a.composer.Asmr().List(), ", "))
			return
		}
		if parts[1] == "off" {
			a.composer.Asmr().Disable()
			fmt.Println("✅ 已退出ASMR模式")
			return
		}
		if err := a.composer.Asmr().Select(parts[1]); err != nil {
			fmt.Printf("❌ %v\n", err)
			return
		}
		fmt.Printf("✅ 已进入ASMR模式: %s\n", parts[1])
	case "stats":
		fmt.Println(a.statsText())
	case "help":
		fmt.Println("命令: !personality <名称> | !asmr <模式> | !asmr off | !stats | !help")
	default:
		fmt.Printf("未知命令: %s\n", parts[0])
	}
}

func (a *app) statsText() string {
	stats := a.collector.Snapshot(a.voice, a.player)
	stats.Personality = a.composer.Personality().Current().ID
	if mode := a.composer.Asmr().Current(); mode != nil {
		stats.AsmrMode = mode.ID
	}
	return stats.Format()
}
