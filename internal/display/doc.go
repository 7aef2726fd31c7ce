// Package display shows pipeline outputs on screen.
//
// Two targets are supported:
//
//   - Terminals: Render draws a grid with 24-bit ANSI colour escapes and the
//     upper half block character, so every character cell carries two pixel
//     rows. Large grids are downsampled to the requested column count first.
//   - MCP clients: EncodePNG and EncodeBase64PNG produce the payload of an
//     image content block, which the client shows to the user.
//
// Nothing here writes to the file system.
package display
