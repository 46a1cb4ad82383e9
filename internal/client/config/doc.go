// Package config loads the operator console configuration.
//
// Values are layered: Defaults, then the JSON file named by -c or -config,
// then flags. LoadConfig validates the result; a job pack id is required.
//
//	-a string    server gRPC address (host:port)
//	-i duration  online check interval
//	-p duration  timeout of one online check
//	-t string    operator access token
//	-T string    file holding the access token (first line)
//	-j string    job pack id
//	-s string    structure id
//	-m string    starting mode (DIVING or ROV)
//	-d string    directory for downloaded footage
//	-l string    log level
//
// The JSON file uses the keys server, online_check_interval, ping_timeout,
// access_token, token_file, job_pack_id, structure_id, mode, footage_dir
// and log_level. Unknown keys are rejected.
package config
