// Command dubstudio is the command-line front end for the localization
// studio: register a video, transcribe it, translate and dub the captions,
// then render a captioned export.
//
// Every workflow step runs in the foreground and honours Ctrl-C. A
// cancelled render leaves no export behind and exits with status 130.
package main
