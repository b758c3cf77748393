// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Dogma Engine Contributors

//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/eval"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogma/world"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/base64"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/digest"
	"github.com/seedwing-io/dogma-engine/pkg/dogmafunc/like"
)

var _ = Describe("loading a policy directory end to end", func() {
	var dir string

	writeDog := func(name, src string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "dogma-world-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(dir) })
	})

	It("compiles patterns spread across several files and evaluates them", func() {
		writeDog("sre.dog", `
pattern deploy-window = {
    environment: "prod",
    hour: business-hours,
}

pattern business-hours = ${ self >= 9 && self <= 17 }
`)
		writeDog("secrets.dog", `
pattern looks-hashed = Digest
`)

		reg := corefunc.NewRegistry()
		Expect(base64.Register(reg)).To(Succeed())
		Expect(like.Register(reg)).To(Succeed())
		Expect(digest.Register(reg)).To(Succeed())

		loader, err := world.NewLoader([]world.Source{{Root: dir}}, reg)
		Expect(err).NotTo(HaveOccurred())

		w, err := loader.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Patterns).To(HaveKey("sre::deploy-window"))
		Expect(w.Patterns).To(HaveKey("secrets::looks-hashed"))

		evaluator := eval.New(reg, 1000)

		input := value.Object([]value.Field{
			{Name: "environment", Value: value.Str("prod")},
			{Name: "hour", Value: value.Int(14)},
		})
		verdict, _, _, err := evaluator.Evaluate(context.Background(), w, "sre::deploy-window", nil, input)
		Expect(err).NotTo(HaveOccurred())
		Expect(verdict.IsOk()).To(BeTrue())

		badInput := value.Object([]value.Field{
			{Name: "environment", Value: value.Str("prod")},
			{Name: "hour", Value: value.Int(22)},
		})
		verdict, _, _, err = evaluator.Evaluate(context.Background(), w, "sre::deploy-window", nil, badInput)
		Expect(err).NotTo(HaveOccurred())
		Expect(verdict.IsOk()).To(BeFalse())
	})

	It("fails closed on a policy that does not compile", func() {
		writeDog("broken.dog", `pattern p = unknown::reference`)

		loader, err := world.NewLoader([]world.Source{{Root: dir}}, corefunc.NewRegistry())
		Expect(err).NotTo(HaveOccurred())

		_, err = loader.Load()
		Expect(err).To(HaveOccurred())
	})
})
