package render

// documentHead is the fixed shell every rendered document starts
// with. The stylesheet is tuned for email clients: GitHub-ish colors,
// a capped content width, and the four report containers.
const documentHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
            line-height: 1.6;
            color: #24292e;
            max-width: 900px;
            margin: 0 auto;
            padding: 20px;
            background-color: #ffffff;
        }
        h1 {
            color: #1a1a1a;
            border-bottom: 2px solid #e1e4e8;
            padding-bottom: 10px;
            font-size: 28px;
        }
        h2 {
            color: #0366d6;
            margin-top: 30px;
            margin-bottom: 15px;
            font-size: 22px;
        }
        h3 {
            color: #24292e;
            margin-top: 20px;
            margin-bottom: 10px;
            font-size: 18px;
        }
        p {
            margin: 10px 0;
        }
        strong {
            color: #1a1a1a;
        }
        a {
            color: #0366d6;
            text-decoration: none;
        }
        a:hover {
            text-decoration: underline;
        }
        ul {
            margin: 10px 0;
            padding-left: 30px;
        }
        li {
            margin: 5px 0;
        }
        hr {
            border: none;
            border-top: 1px solid #e1e4e8;
            margin: 30px 0;
        }
        .metadata {
            background-color: #f6f8fa;
            padding: 15px;
            border-radius: 6px;
            margin: 15px 0;
            border-left: 4px solid #0366d6;
        }
        .summary {
            background-color: #ffffff;
            padding: 15px;
            margin: 15px 0;
            border-left: 3px solid #28a745;
        }
        .files {
            background-color: #f6f8fa;
            padding: 10px;
            border-radius: 4px;
            margin: 10px 0;
            font-size: 14px;
        }
        .stats {
            background-color: #fff5b1;
            padding: 15px;
            border-radius: 6px;
            margin-top: 20px;
            border-left: 4px solid #ffd33d;
        }
        code {
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            font-size: 13px;
            background-color: #ffffff;
            padding: 2px 6px;
            border-radius: 3px;
            border: 1px solid #e1e4e8;
            color: #24292e;
        }
    </style>
</head>
<body>`
