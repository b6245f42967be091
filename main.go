package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/matsuokaju/rhythm-game/internal/config"
	"github.com/matsuokaju/rhythm-game/internal/logger"
	"github.com/matsuokaju/rhythm-game/internal/score"
	"github.com/matsuokaju/rhythm-game/internal/session"
	"github.com/matsuokaju/rhythm-game/internal/theme"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

func run(args []string) error {
	cmd, err := config.Parse(args)
	if nil != err {
		return err
	}

	var logOut io.Writer = os.Stderr
	if *config.LogFile != "" {
		f, err := os.OpenFile(*config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if nil != err {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if err := logger.InitLogger(*config.LogLevel, logOut); nil != err {
		return err
	}

	// Ensure our Default implementations are used as interfaces
	var st score.Store = &score.DefaultStore{Log: logger.GetLogger()}
	var th theme.Theme = &theme.DefaultTheme{}
	p := &Program{Store: st, Theme: th, Log: logger.GetLogger()}

	if err := p.Init(config.Chart(cmd), *config.Difficulty); nil != err {
		return err
	}
	defer p.Deinit()

	switch cmd {
	case config.Info.FullCommand():
		return p.Info(os.Stdout)
	case config.History.FullCommand():
		return p.History(os.Stdout)
	case config.Simulate.FullCommand():
		s, err := p.Simulate(*config.Jitter, *config.Seed)
		if nil != err {
			return err
		}
		summary(os.Stdout, s)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	s, err := p.Play(ctx)
	if nil != err {
		return err
	}
	summary(os.Stdout, s)
	return nil
}

func summary(w io.Writer, s *session.Session) {
	st := s.Score()
	fmt.Fprintf(w, "      Score:  %8v\n", st.Score)
	fmt.Fprintf(w, "  Max combo:  %8v\n", st.MaxCombo)
	fmt.Fprintf(w, "   Accuracy:  %7.2f%%\n", s.Accuracy()*100)
	fmt.Fprintf(w, "        Tap:  %7.2f%%  P %v  G %v  B %v  M %v\n",
		s.TapAccuracy()*100, st.Tap.Perfect, st.Tap.Good, st.Tap.Bad, st.Tap.Miss)
	fmt.Fprintf(w, "       Hold:  %7.2f%%  P %v  M %v\n", s.HoldAccuracy()*100, st.Hold.Perfect, st.Hold.Miss)
	if n := s.Skipped(); n > 0 {
		fmt.Fprintf(w, "    Skipped:  %8v\n", n)
	}
}
