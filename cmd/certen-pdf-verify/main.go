// certen-pdf-verify checks a manifest against local artefacts by running
// the six-step verification protocol and reports whether the proof holds.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/certen/pdf-zk-proof/pkg/verifier"
)

func main() {
	manifestPath := flag.String("manifest", "", "path to manifest.json")
	artifactPath := flag.String("artifact", "", "path to the local ciphertext package")
	localTLRootPath := flag.String("tl-root", "", "path to the verifier's locally-built trust-list root")
	localEUTLRootPath := flag.String("eu-tl-root", "", "path to the verifier's locally-built EU trust-list root (only needed when the manifest's eu_trust is enabled)")
	vkPath := flag.String("vk", "", "path to the cached Groth16 verification key")
	flag.Parse()

	if err := run(*manifestPath, *artifactPath, *localTLRootPath, *localEUTLRootPath, *vkPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(manifestPath, artifactPath, localTLRootPath, localEUTLRootPath, vkPath string) error {
	if manifestPath == "" || artifactPath == "" || localTLRootPath == "" || vkPath == "" {
		return fmt.Errorf("-manifest, -artifact, -tl-root, and -vk are all required")
	}

	manifestRaw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	result, err := verifier.Verify(manifestRaw, verifier.Config{
		ArtifactPath:      artifactPath,
		LocalTLRootPath:   localTLRootPath,
		LocalEUTLRootPath: localEUTLRootPath,
		VKPath:            vkPath,
	})
	if err != nil {
		return err
	}

	if result.Verified {
		fmt.Fprintln(os.Stdout, "OK: proof verified")
	}
	return nil
}
