//go:build !nogpu

package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/aurora/gpu" // also registers the GPU backend
)

var (
	shaderPrint bool
	shaderSPIRV string
)

var shaderCmd = &cobra.Command{
	Use:   "shader",
	Short: "Validate the WGSL program",
	Long:  `Compiles the aurora WGSL program to SPIR-V with naga and reports the result.`,
	Args:  cobra.NoArgs,
	RunE:  runShader,
}

func init() {
	shaderCmd.Flags().BoolVar(&shaderPrint, "print", false, "print the WGSL source")
	shaderCmd.Flags().StringVar(&shaderSPIRV, "spirv", "", "write the SPIR-V binary to this file")
	rootCmd.AddCommand(shaderCmd)
}

func runShader(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if shaderPrint {
		fmt.Fprintln(out, gpu.ShaderSource)
	}

	words, err := gpu.CompileShader(gpu.ShaderSource)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d SPIR-V words (%s, %s)\n", len(words), gpu.VertexEntryPoint, gpu.FragmentEntryPoint)

	if shaderSPIRV != "" {
		buf := make([]byte, len(words)*4)
		for i, w := range words {
			binary.LittleEndian.PutUint32(buf[i*4:], w)
		}
		if err := os.WriteFile(shaderSPIRV, buf, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", shaderSPIRV)
	}
	return nil
}
