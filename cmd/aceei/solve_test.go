// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/someonegg/aceei"
	"github.com/someonegg/aceei/course"
)

const problem = `{
   "valuations": {
      "avi": {"x": 1, "y": 2, "z": 4},
      "beni": {"x": 2, "y": 3, "z": 1}
   },
   "agent_capacity": 2,
   "item_capacity": 1,
   "item_capacities": {"z": 2},
   "budgets": {"avi": 2, "beni": 3}
}`

func writeProblem(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "problem.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func defaultOptions(problemFile, outFile string) solveOptions {
	return solveOptions{
		problemFile: problemFile,
		outFile:     outFile,
		delta:       0.5,
		epsilon:     0.5,
		eftb:        "none",
		maxIter:     1000,
		solver:      "exhaustive",
	}
}

func readOutcome(t *testing.T, file string) *course.Outcome {
	t.Helper()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var out course.Outcome
	require.NoError(t, json.Unmarshal(data, &out))
	return &out
}

func TestDoSolve(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(writeProblem(t, problem), filepath.Join(dir, "out.json"))
	opts.metricsFile = filepath.Join(dir, "aceei.prom")

	require.NoError(t, doSolve(context.Background(), zap.NewNop(), opts))

	out := readOutcome(t, opts.outFile)
	assert.True(t, out.Converged)
	assert.Zero(t, out.Residual)
	assert.Equal(t, []course.Assignment{
		{Student: "avi", Courses: []string{"x", "z"}, Budget: 1.5},
		{Student: "beni", Courses: []string{"y", "z"}, Budget: 2.5},
	}, out.Assignments)

	prom, err := os.ReadFile(opts.metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "aceei_converged_total 1")
	assert.Contains(t, string(prom), "aceei_iterations_total 7")
}

func TestDoSolve_Simplex(t *testing.T) {
	opts := defaultOptions(writeProblem(t, problem), filepath.Join(t.TempDir(), "out.json"))
	opts.solver = "simplex"
	opts.maxIter = 50

	if err := doSolve(context.Background(), zap.NewNop(), opts); err != nil {
		require.ErrorIs(t, err, aceei.ErrNotConverged)
	}

	out := readOutcome(t, opts.outFile)
	require.Len(t, out.Assignments, 2)
	for _, a := range out.Assignments {
		assert.LessOrEqual(t, len(a.Courses), 2)
	}
}

func TestDoSolve_NotConverged(t *testing.T) {
	opts := defaultOptions(writeProblem(t, problem), filepath.Join(t.TempDir(), "out.yaml"))
	opts.maxIter = 1

	err := doSolve(context.Background(), zap.NewNop(), opts)
	assert.ErrorIs(t, err, aceei.ErrNotConverged)

	// the best iterate is still written
	data, err := os.ReadFile(opts.outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "converged: false")
}

func TestDoSolve_BadOptions(t *testing.T) {
	in := writeProblem(t, problem)
	out := filepath.Join(t.TempDir(), "out.json")

	opts := defaultOptions(in, out)
	opts.eftb = "strict"
	assert.ErrorIs(t, doSolve(context.Background(), zap.NewNop(), opts), aceei.ErrUnknownMode)

	opts = defaultOptions(in, out)
	opts.solver = "greedy"
	assert.ErrorContains(t, doSolve(context.Background(), zap.NewNop(), opts), "unknown solver")

	opts = defaultOptions(filepath.Join(t.TempDir(), "missing.json"), out)
	assert.ErrorIs(t, doSolve(context.Background(), zap.NewNop(), opts), os.ErrNotExist)

	_, err := os.Stat(out)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDoCheck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, doCheck(&buf, writeProblem(t, problem)))
	assert.Equal(t, "2 students, 3 courses: ok\n", buf.String())

	noBudget := `{
   "valuations": {"avi": {"x": 1}},
   "agent_capacity": 1,
   "item_capacity": 1
}`
	err := doCheck(&buf, writeProblem(t, noBudget))
	assert.ErrorIs(t, err, aceei.ErrMissingBudget)

	tooGreedy := `{
   "valuations": {"avi": {"x": 1}},
   "agent_capacity": 2,
   "item_capacity": 1,
   "budgets": {"avi": 1}
}`
	err = doCheck(&buf, writeProblem(t, tooGreedy))
	assert.ErrorIs(t, err, aceei.ErrInfeasibleInstance)
}

func TestApp(t *testing.T) {
	dir := t.TempDir()
	in := writeProblem(t, problem)
	out := filepath.Join(dir, "out.json")

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	require.NoError(t, app.Run([]string{"aceei", "check", "--problem", in}))
	assert.Contains(t, buf.String(), ": ok")

	require.NoError(t, newApp().Run([]string{"aceei", "-v", "s", "--problem", in, "--out", out, "--workers", "1"}))
	assert.FileExists(t, out)

	err := newApp().Run([]string{"aceei", "solve", "--problem", in, "--out", out, "--delta", "0"})
	assert.EqualError(t, err, "invalid delta")
}
