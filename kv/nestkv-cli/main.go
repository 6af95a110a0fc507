package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/ngaut/log"
	"github.com/spf13/cobra"

	"github.com/nestkv/nestkv/kv/config"
	"github.com/nestkv/nestkv/kv/shell"
	"github.com/nestkv/nestkv/kv/store"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "nestkv-cli",
	Short: "In-memory key-value store with nested transactions",
	Long: "nestkv-cli reads SET/GET/UNSET/FIND/COUNTS/BEGIN/ROLLBACK/COMMIT/END " +
		"commands from standard input and prints the results. Interactive input " +
		"gets a readline prompt; piped input is processed line by line.",
	Run: runCli,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level, overrides the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	conf := config.DefaultConf
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &conf); err != nil {
			log.Fatalf("load config %s: %v", configPath, err)
		}
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}
	return &conf
}

func runCli(cmd *cobra.Command, args []string) {
	conf := loadConfig()
	log.SetLevelByString(conf.LogLevel)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	dispatcher := shell.NewDispatcher(store.NewStoreWithDegree(conf.BaseDegree))

	l, err := readline.NewEx(&readline.Config{
		Prompt:            conf.Prompt,
		HistoryFile:       conf.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer l.Close()

	for {
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return
			}
			continue
		}
		reply, done := dispatcher.Exec(strings.TrimSpace(line))
		if reply != "" {
			fmt.Println(reply)
		}
		if done {
			return
		}
	}
}
