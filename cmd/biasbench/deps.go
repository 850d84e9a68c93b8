package main

import (
	"github.com/stellarlinkco/bias-bench/internal/llm"
	"github.com/stellarlinkco/bias-bench/internal/scorer"
)

var defaultProviderFromConfig = llm.DefaultProviderFromConfig

var newScorer = scorer.New
