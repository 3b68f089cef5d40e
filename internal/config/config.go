package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Mode string `yaml:"mode"`
		IP   string `yaml:"ip"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	SelectedModule map[string]string    `yaml:"selected_module"`
	EngineOrder    []string             `yaml:"engine_order"`
	Tts            map[string]TtsConfig `yaml:"tts"`
	LLM            map[string]LLMConfig `yaml:"llm"`
	Character      CharacterConfig      `yaml:"character"`
	Audio          AudioConfig          `yaml:"audio"`
	CMDExit        []string             `yaml:"cmd_exit"`
}

type TtsConfig struct {
	ApiKey  string `yaml:"api_key"`
	AppID   string `yaml:"app_id"`
	Token   string `yaml:"token"`
	Cluster string `yaml:"cluster"`
}

type LLMConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type CharacterConfig struct {
	DefaultPersonality string `yaml:"default_personality"`
	DefaultAsmrMode    string `yaml:"default_asmr_mode"`
}

type AudioConfig struct {
	SampleRate   int  `yaml:"sample_rate"`
	Channels     int  `yaml:"channels"`
	MaxLatencyMS int  `yaml:"max_latency_ms"`
	UseGPU       bool `yaml:"use_gpu"`
}

var (
	config  *Config
	cfgLock sync.RWMutex
	once    sync.Once
)

func NewConfig() *Config {
	once.Do(func() {
		pwd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		filePath := filepath.Join(pwd, "config", "config.yaml")
		if _, err = os.Stat(filePath); os.IsNotExist(err) {
			panic(fmt.Sprintf("config file not found: %s", filePath))
		}

		config = newConfig(filePath)
	})
	return config
}

func newConfig(configFilePath string) *Config {
	// .env 中的变量只补充环境，不覆盖已有环境变量
	_ = godotenv.Load()

	// 初始加载配置
	if err := loadConfig(configFilePath); err != nil {
		log.Fatalf("初始化配置失败: %v", err)
	}
	printConfig()

	go watchConfig(configFilePath)
	return config
}

func watchConfig(filePath string) {
	// 创建文件监听器
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// 添加配置文件到监听列表
	if err = watcher.Add(filePath); err != nil {
		log.Fatalf("监听系统配置文件失败: %v", err)
	}

	fmt.Printf("开始监听系统配置文件变更: %s\n", filePath)

	// 处理文件变更事件（带防抖）
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // 立即消耗初始信号

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// 只处理写入和重命名事件
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				debounceTimer.Reset(500 * time.Millisecond) // 500ms防抖
			}
		case <-debounceTimer.C:
			log.Println("检测到系统配置文件变更，重新加载...")
			if err = loadConfig(filePath); err != nil {
				log.Printf("系统配置重载失败: %v", err)
			} else {
				printConfig()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("系统配置监听错误: %v", err)
		}
	}
}

func loadConfig(filename string) error {
	file, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("读取系统配置失败: %w", err)
	}
	var cfg Config
	if err = yaml.Unmarshal(file, &cfg); err != nil {
		return fmt.Errorf("解析系统配置失败: %w", err)
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	cfgLock.Lock()
	defer cfgLock.Unlock()
	config = &cfg
	return nil
}

// applyEnvOverrides 环境变量优先级高于配置文件
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZHIBO_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.SampleRate = n
		}
	}
	if v := os.Getenv("ZHIBO_MAX_LATENCY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audio.MaxLatencyMS = n
		}
	}
	if v := os.Getenv("ZHIBO_USE_GPU"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.UseGPU = b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 22050
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.MaxLatencyMS <= 0 {
		cfg.Audio.MaxLatencyMS = 200
	}
	if cfg.Character.DefaultPersonality == "" {
		cfg.Character.DefaultPersonality = "cute_girl"
	}
	if cfg.Character.DefaultAsmrMode == "" {
		cfg.Character.DefaultAsmrMode = "gentle_whisper"
	}
	if len(cfg.EngineOrder) == 0 {
		cfg.EngineOrder = []string{"edge"}
	}
}

func printConfig() {
	cfgLock.RLock()
	defer cfgLock.RUnlock()

	fmt.Println("当前系统配置:")
	fmt.Printf("• 服务器模式: %s\n", config.Server.Mode)
	fmt.Printf("• 服务器IP: %s\n", config.Server.IP)
	fmt.Printf("• 服务器端口: %s\n", config.Server.Port)
	fmt.Printf("• 引擎优先级: %v\n", config.EngineOrder)
	fmt.Printf("• 默认人设: %s\n", config.Character.DefaultPersonality)
	fmt.Printf("• 默认ASMR模式: %s\n", config.Character.DefaultAsmrMode)
	fmt.Printf("• 采样率: %dHz\n", config.Audio.SampleRate)
	fmt.Printf("• 延迟目标: %dms\n", config.Audio.MaxLatencyMS)
	fmt.Println("• 已选择的模块:")
	for module, provider := range config.SelectedModule {
		fmt.Printf("  - %s: %s\n", module, provider)
	}
	fmt.Println("• TTS配置:")
	for name := range config.Tts {
		fmt.Printf("  - %s\n", name)
	}
}
