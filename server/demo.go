package server

// DemoContent is the initial markup of new documents when seeding is
// enabled: one paragraph per style.
const DemoContent = `
<p data-style="highlight">Hello</p>
<p data-style="quote">This is a test</p>
<p>Welcome to the styled editor with custom paragraph formatting!</p>
<p data-style="info">This is an info callout - perfect for highlighting important information.</p>
<p data-style="warning">This is a warning callout - use it to draw attention to potential issues.</p>
<p data-style="success">This is a success callout - great for positive feedback and confirmations.</p>
<p data-style="code">This is a code-style paragraph - ideal for inline code snippets or technical content.</p>
`
