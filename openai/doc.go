// Package openai is a minimal client for the OpenAI REST surface voxagent
// uses: chat completions, the Responses API, files and vector stores.
// Speech endpoints live in the speech package next to the other synthesis
// providers.
package openai
